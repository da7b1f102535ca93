package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity - степень опасности пожара
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"Low", "Medium", "High", "Critical"}

func (s Severity) Valid() bool {
	return s <= SeverityCritical
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
	return severityNames[s]
}

// ParseSeverity принимает имя ("high", "Critical") или порядковый номер ("2")
func ParseSeverity(value string) (Severity, error) {
	value = strings.TrimSpace(value)
	for i, name := range severityNames {
		if strings.EqualFold(name, value) {
			return Severity(i), nil
		}
	}
	if n, err := strconv.ParseUint(value, 10, 8); err == nil && Severity(n).Valid() {
		return Severity(n), nil
	}
	return 0, fmt.Errorf("unknown severity %q", value)
}

// Status - состояние инцидента в процессе верификации
type Status uint8

const (
	StatusReported Status = iota
	StatusVerified
	StatusResolved
	StatusFalseReport
)

var statusNames = [...]string{"Reported", "Verified", "Resolved", "FalseReport"}

func (s Status) Valid() bool {
	return s <= StatusFalseReport
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return statusNames[s]
}

// Terminal - из Resolved и FalseReport переходов нет
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusFalseReport
}

// ParseStatus принимает имя ("verified", "FalseReport") или порядковый номер
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	for i, name := range statusNames {
		if strings.EqualFold(name, value) {
			return Status(i), nil
		}
	}
	if strings.EqualFold(value, "false") || strings.EqualFold(value, "false_report") {
		return StatusFalseReport, nil
	}
	if n, err := strconv.ParseUint(value, 10, 8); err == nil && Status(n).Valid() {
		return Status(n), nil
	}
	return 0, fmt.Errorf("unknown status %q", value)
}

// transitions - граф допустимых переходов статуса
var transitions = map[Status][]Status{
	StatusReported: {StatusVerified, StatusResolved, StatusFalseReport},
	StatusVerified: {StatusResolved},
}

// CanTransition сообщает, разрешен ли переход from -> to
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Incident - запись о пожаре в реестре.
// Координаты хранятся в фиксированной точке (градусы * 10^6), см. пакет geo.
type Incident struct {
	ID            int64      `json:"id"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	Latitude      int64      `json:"latInt"`
	Longitude     int64      `json:"lngInt"`
	CreatedAt     time.Time  `json:"createdAt"`
	Reporter      string     `json:"reporter"`
	Severity      Severity   `json:"severity"`
	Status        Status     `json:"status"`
	Verifier      string     `json:"verifier"`
	VerifiedAt    *time.Time `json:"verifiedAt"`
	RewardClaimed bool       `json:"rewardClaimed"`
}

// IncidentReport - данные нового сообщения о пожаре, координаты в градусах
type IncidentReport struct {
	Location    string
	Description string
	Latitude    float64
	Longitude   float64
	Severity    Severity
	Reporter    string
}

// Active - инцидент еще не закрыт (Reported или Verified)
func (i *Incident) Active() bool {
	return i.Status == StatusReported || i.Status == StatusVerified
}

// Rewardable - за инцидент положена награда репортеру
func (i *Incident) Rewardable() bool {
	return i.Status == StatusVerified || i.Status == StatusResolved
}

// IncidentStats - сводка для дашборда
type IncidentStats struct {
	Total          int64          `json:"total"`
	Read           int            `json:"read"`
	Active         int            `json:"active"`
	Verified       int            `json:"verified"`
	Resolved       int            `json:"resolved"`
	FalseReports   int            `json:"false_reports"`
	RewardsClaimed int            `json:"rewards_claimed"`
	BySeverity     map[string]int `json:"by_severity"`
}
