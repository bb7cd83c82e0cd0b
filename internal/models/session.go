package models

import "time"

// BankVerificationStatus is the outcome of the identity-verification attempt.
type BankVerificationStatus string

const (
	VerificationPending BankVerificationStatus = "pending"
	VerificationSuccess BankVerificationStatus = "success"
	VerificationFailed  BankVerificationStatus = "failed"
)

// ConfirmationCount is the number of acknowledgements required before investing.
const ConfirmationCount = 3

type RiskProfile struct {
	InvestmentTimeline string `json:"investmentTimeline" example:"3-5"`
	RiskComfort        string `json:"riskComfort" example:"moderate"`
}

// Complete reports whether both risk answers are present.
func (r RiskProfile) Complete() bool {
	return r.InvestmentTimeline != "" && r.RiskComfort != ""
}

type PersonalInfo struct {
	FullName     string `json:"fullName" validate:"required" example:"Demo User"`
	IDNumber     string `json:"idNumber" validate:"required" example:"****1234"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required" example:"1990-01-15"`
	Address      string `json:"address" validate:"required" example:"123 Jalan Example, Kuala Lumpur"`
	Email        string `json:"email" validate:"required" example:"user@example.com"`
	Phone        string `json:"phone" validate:"required" example:"+60123456789"`
	Occupation   string `json:"occupation,omitempty"`
	AnnualIncome string `json:"annualIncome,omitempty"`
}

// IsZero reports whether no field has been filled in.
func (p PersonalInfo) IsZero() bool {
	return p == PersonalInfo{}
}

type Investment struct {
	ID              string    `json:"id"`
	FundID          string    `json:"fundId"`
	FundName        string    `json:"fundName"`
	FundCategory    string    `json:"fundCategory"`
	Amount          Money     `json:"amount"`
	CurrentValue    Money     `json:"currentValue"`
	Status          string    `json:"status"`
	ReferenceNumber string    `json:"referenceNumber"`
	InvestedAt      time.Time `json:"investedAt"`
}

// Session is the signed-in user's wallet and flow state.
type Session struct {
	User                   User                    `json:"user"`
	WalletBalance          Money                   `json:"walletBalance"`
	HasInvested            bool                    `json:"hasInvested"`
	OnboardingComplete     bool                    `json:"onboardingComplete"`
	EkycComplete           bool                    `json:"ekycComplete"`
	OnboardingStep         int                     `json:"onboardingStep"`
	RiskProfile            RiskProfile             `json:"riskProfile"`
	InvestmentPreferences  []string                `json:"investmentPreferences"`
	BankVerificationStatus BankVerificationStatus  `json:"bankVerificationStatus"`
	PersonalInfo           PersonalInfo            `json:"personalInfo"`
	SelectedFund           *Fund                   `json:"selectedFund,omitempty"`
	InvestmentAmount       Money                   `json:"investmentAmount"`
	ConfirmedCheckboxes    [ConfirmationCount]bool `json:"confirmedCheckboxes"`
	Holdings               []Investment            `json:"holdings"`
}

// Clone returns a deep copy safe to hand out of a lock.
func (s Session) Clone() Session {
	out := s
	out.InvestmentPreferences = append([]string(nil), s.InvestmentPreferences...)
	out.Holdings = append([]Investment(nil), s.Holdings...)
	if s.SelectedFund != nil {
		f := *s.SelectedFund
		out.SelectedFund = &f
	}
	return out
}
