package services

import (
	"time"

	"univtours/internal/repositories"
)

type DashboardService struct {
	Repo repositories.DashboardRepo
	Now  func() time.Time
}

func (s DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// DashboardData is the monthly overview shown on the back-office home page.
type DashboardData struct {
	Month        string                        `json:"month"`
	ParStatut    map[string]int                `json:"par_statut"`
	ParType      map[string]int                `json:"par_type"`
	Clients      int                           `json:"clients"`
	EncaisseMois float64                       `json:"encaisse_mois"`
	Factures     []repositories.FactureRollup  `json:"factures"`
	RevenusAnnee []repositories.MonthlyRevenue `json:"revenus_annee"`
}

// Overview aggregates the month's figures. Month format "2006-01"; empty
// means the current month.
func (s DashboardService) Overview(month string) (DashboardData, error) {
	now := s.now()
	if month == "" {
		month = now.Format("2006-01")
	}
	year := now.Year()
	if t, err := time.Parse("2006-01", month); err == nil {
		year = t.Year()
	}

	out := DashboardData{Month: month}

	var err error
	if out.ParStatut, err = s.Repo.CountsByStatut(month); err != nil {
		return DashboardData{}, err
	}
	if out.ParType, err = s.Repo.CountsByType(month); err != nil {
		return DashboardData{}, err
	}
	if out.Clients, err = s.Repo.ClientCount(); err != nil {
		return DashboardData{}, err
	}
	if out.EncaisseMois, err = s.Repo.EncaisseForMonth(month); err != nil {
		return DashboardData{}, err
	}
	if out.Factures, err = s.Repo.FactureRollups(month); err != nil {
		return DashboardData{}, err
	}
	if out.RevenusAnnee, err = s.Repo.RevenueByMonth(year); err != nil {
		return DashboardData{}, err
	}
	return out, nil
}
