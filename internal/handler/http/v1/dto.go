package v1

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIncidentRequest DTO для сообщения о пожаре
// @Description DTO для сообщения о пожаре; репортер берется из токена
type CreateIncidentRequest struct {
	Location    string   `json:"location" validate:"required,min=2,max=255"`
	Description string   `json:"description" validate:"required,max=2048"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	Severity    string   `json:"severity" validate:"required"`
}

// VerifyIncidentRequest DTO для смены статуса инцидента
// @Description Целевой статус: Verified, Resolved или FalseReport
type VerifyIncidentRequest struct {
	Status string `json:"status" validate:"required"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description Координаты в градусах, восстановленные из фиксированной точки
type IncidentResponse struct {
	ID            int64      `json:"id"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Severity      string     `json:"severity"`
	Status        string     `json:"status"`
	Reporter      string     `json:"reporter"`
	Verifier      string     `json:"verifier,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	RewardClaimed bool       `json:"reward_claimed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IncidentListResponse DTO для выборки по диапазону id
type IncidentListResponse struct {
	From  int64               `json:"from"`
	To    int64               `json:"to"`
	Count int                 `json:"count"`
	Items []*IncidentResponse `json:"items"`
}

// CountResponse DTO с количеством записей
type CountResponse struct {
	Count int64 `json:"count"`
}

// ReporterIncidentsResponse DTO со списком id инцидентов репортера
type ReporterIncidentsResponse struct {
	Reporter    string  `json:"reporter"`
	IncidentIDs []int64 `json:"incident_ids"`
}

// BalanceResponse DTO с балансом наград
type BalanceResponse struct {
	Actor          string          `json:"actor"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string"`
	RewardsClaimed int64           `json:"rewards_claimed"`
}

// CreateFundRequestRequest DTO для заявки на финансирование
// @Description Сумма передается строкой или числом, заявитель берется из токена
type CreateFundRequestRequest struct {
	IncidentID    int64           `json:"incident_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	Justification string          `json:"justification" validate:"required,max=1024"`
}

// FundRequestResponse DTO с состоянием заявки
type FundRequestResponse struct {
	ID              int64           `json:"id"`
	IncidentID      int64           `json:"incident_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount" swaggertype:"string"`
	Requester       string          `json:"requester"`
	Justification   string          `json:"justification"`
	Status          string          `json:"status"`
	Approver        string          `json:"approver,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt     *time.Time      `json:"disbursed_at,omitempty"`
}

// DepositRequest DTO для пополнения фонда
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
}

// FundPoolResponse DTO с балансом фонда
type FundPoolResponse struct {
	Balance        decimal.Decimal `json:"balance" swaggertype:"string"`
	TotalDeposited decimal.Decimal `json:"total_deposited" swaggertype:"string"`
	TotalDisbursed decimal.Decimal `json:"total_disbursed" swaggertype:"string"`
}

// HealthResponse DTO для health-check
type HealthResponse struct {
	Status        string `json:"status"`
	LedgerBackend string `json:"ledger_backend"`
	IncidentHead  int64  `json:"incident_head"`
}
