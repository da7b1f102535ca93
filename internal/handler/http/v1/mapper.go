package v1

import (
	"github.com/shenikar/firechain/internal/geo"
	"github.com/shenikar/firechain/internal/models"
)

// DTOToIncidentReport преобразует DTO в доменный отчет; severity уже разобрана
func DTOToIncidentReport(dto CreateIncidentRequest, severity models.Severity, reporter string) models.IncidentReport {
	return models.IncidentReport{
		Location:    dto.Location,
		Description: dto.Description,
		Latitude:    *dto.Latitude,
		Longitude:   *dto.Longitude,
		Severity:    severity,
		Reporter:    reporter,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	lat, lng := geo.Decode(model.Latitude, model.Longitude)
	return &IncidentResponse{
		ID:            model.ID,
		Location:      model.Location,
		Description:   model.Description,
		Latitude:      lat,
		Longitude:     lng,
		Severity:      model.Severity.String(),
		Status:        model.Status.String(),
		Reporter:      model.Reporter,
		Verifier:      model.Verifier,
		VerifiedAt:    model.VerifiedAt,
		RewardClaimed: model.RewardClaimed,
		CreatedAt:     model.CreatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToFundRequestResponse(model *models.FundRequest) *FundRequestResponse {
	return &FundRequestResponse{
		ID:              model.ID,
		IncidentID:      model.IncidentID,
		RequestedAmount: model.RequestedAmount,
		Requester:       model.Requester,
		Justification:   model.Justification,
		Status:          string(model.Status()),
		Approver:        model.Approver,
		CreatedAt:       model.CreatedAt,
		ApprovedAt:      model.ApprovedAt,
		DisbursedAt:     model.DisbursedAt,
	}
}

func ModelToFundPoolResponse(model *models.FundPool) *FundPoolResponse {
	return &FundPoolResponse{
		Balance:        model.Balance,
		TotalDeposited: model.TotalDeposited,
		TotalDisbursed: model.TotalDisbursed,
	}
}

func ModelToBalanceResponse(model *models.RewardBalance) *BalanceResponse {
	return &BalanceResponse{
		Actor:          model.Actor,
		Amount:         model.Amount,
		RewardsClaimed: model.RewardsClaimed,
	}
}
