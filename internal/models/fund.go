package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundStatus - этап заявки на экстренное финансирование
type FundStatus string

const (
	FundStatusRequested FundStatus = "Requested"
	FundStatusApproved  FundStatus = "Approved"
	FundStatusDisbursed FundStatus = "Disbursed"
)

// FundRequest - заявка на выплату из фонда, привязанная к инциденту
type FundRequest struct {
	ID              int64           `json:"id"`
	IncidentID      int64           `json:"incidentId"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	Requester       string          `json:"requester"`
	Justification   string          `json:"justification"`
	CreatedAt       time.Time       `json:"createdAt"`
	Approved        bool            `json:"approved"`
	Disbursed       bool            `json:"disbursed"`
	Approver        string          `json:"approver,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	DisbursedAt     *time.Time      `json:"disbursedAt,omitempty"`
}

func (r *FundRequest) Status() FundStatus {
	switch {
	case r.Disbursed:
		return FundStatusDisbursed
	case r.Approved:
		return FundStatusApproved
	default:
		return FundStatusRequested
	}
}

// FundPool - общий баланс фонда
type FundPool struct {
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	TotalDisbursed decimal.Decimal `json:"totalDisbursed"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RewardBalance - баланс токенов участника
type RewardBalance struct {
	Actor          string          `json:"actor"`
	Amount         decimal.Decimal `json:"amount"`
	RewardsClaimed int64           `json:"rewardsClaimed"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
