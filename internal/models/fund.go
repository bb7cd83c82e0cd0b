package models

type Fund struct {
	ID                 string `json:"id" example:"2"`
	Name               string `json:"name" example:"Money Market Fund"`
	Category           string `json:"category" example:"Conservative Growth"`
	Description        string `json:"description"`
	MinimumInvestment  Money  `json:"minimumInvestment" example:"1000"`
	ExpectedReturns    string `json:"expectedReturns" example:"3-4% annually"`
	RiskLevel          string `json:"riskLevel" example:"Low"`
	WithdrawalTimeline string `json:"withdrawalTimeline" example:"1-2 business days"`
}

var fundCatalog = []Fund{
	{
		ID:                 "1",
		Name:               "Balanced Growth Fund",
		Category:           "Income Builder",
		Description:        "A moderate-risk portfolio balanced between stocks and bonds.",
		MinimumInvestment:  1000,
		ExpectedReturns:    "6-8% annually",
		RiskLevel:          "Moderate",
		WithdrawalTimeline: "2-3 business days",
	},
	{
		ID:                 "2",
		Name:               "Money Market Fund",
		Category:           "Conservative Growth",
		Description:        "Low-risk fund focused on capital preservation and steady income.",
		MinimumInvestment:  1000,
		ExpectedReturns:    "3-4% annually",
		RiskLevel:          "Low",
		WithdrawalTimeline: "1-2 business days",
	},
	{
		ID:                 "3",
		Name:               "Shariah Equity Fund",
		Category:           "Shariah-Compliant",
		Description:        "Islamic principles-based equity fund for capital growth.",
		MinimumInvestment:  1000,
		ExpectedReturns:    "7-10% annually",
		RiskLevel:          "Moderate-High",
		WithdrawalTimeline: "2-3 business days",
	},
}

// Funds returns a copy of the static fund catalog.
func Funds() []Fund {
	out := make([]Fund, len(fundCatalog))
	copy(out, fundCatalog)
	return out
}

// FundByID looks a fund up in the catalog.
func FundByID(id string) (Fund, bool) {
	for _, f := range fundCatalog {
		if f.ID == id {
			return f, true
		}
	}
	return Fund{}, false
}

// FundByName looks a fund up by its display name.
func FundByName(name string) (Fund, bool) {
	for _, f := range fundCatalog {
		if f.Name == name {
			return f, true
		}
	}
	return Fund{}, false
}
