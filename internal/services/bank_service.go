package services

import (
	"encoding/json"
	"net/http"
	"strings"
)

type Bank struct {
	Code string `json:"code" example:"MBB"`
	Name string `json:"name" example:"Maybank"`
}

var malaysianBanks = []Bank{
	{Code: "MBB", Name: "Maybank"},
	{Code: "CIMB", Name: "CIMB"},
	{Code: "PBB", Name: "Public Bank"},
	{Code: "RHB", Name: "RHB"},
	{Code: "AFFIN", Name: "Affin Bank"},
	{Code: "HLB", Name: "Hong Leong Bank"},
	{Code: "AMB", Name: "AmBank"},
	{Code: "UOB", Name: "UOB Malaysia"},
	{Code: "CITI", Name: "Citibank Malaysia"},
}

// BankService serves the banks offered for redirect verification.
type BankService struct{}

func NewBankService() *BankService {
	return &BankService{}
}

func (bs *BankService) Banks() []Bank {
	banks := make([]Bank, len(malaysianBanks))
	copy(banks, malaysianBanks)
	return banks
}

// Find matches a bank by code or by name, case-insensitively.
func (bs *BankService) Find(codeOrName string) (Bank, bool) {
	key := strings.TrimSpace(codeOrName)
	for _, b := range malaysianBanks {
		if strings.EqualFold(b.Code, key) || strings.EqualFold(b.Name, key) {
			return b, true
		}
	}
	return Bank{}, false
}

// GetAllBanks lists the verification banks
// @Summary List verification banks
// @Description Banks a user can choose for redirect identity verification
// @Tags verification
// @Produce json
// @Success 200 {array} Bank
// @Router /banks [get]
func (bs *BankService) GetAllBanks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	json.NewEncoder(w).Encode(bs.Banks())
}
