package admin

import (
	"github.com/stackos/landing/pkg/constants"
	"github.com/stackos/landing/web"
)

type SignupResponse struct {
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type DashboardResponse struct {
	Total       int64            `json:"total"`
	Last7Days   int64            `json:"last_7_days"`
	Last30Days  int64            `json:"last_30_days"`
	Recent      []SignupResponse `json:"recent"`
	GeneratedAt string           `json:"generated_at"`
}

func ToDashboardResponse(d *Dashboard) DashboardResponse {
	recent := make([]SignupResponse, 0, len(d.Recent))
	for _, entry := range d.Recent {
		recent = append(recent, SignupResponse{
			Email:     entry.Email,
			CreatedAt: entry.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
		})
	}

	return DashboardResponse{
		Total:       d.Total,
		Last7Days:   d.Last7Days,
		Last30Days:  d.Last30Days,
		Recent:      recent,
		GeneratedAt: d.GeneratedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func ToAdminPage(d *Dashboard, userEmail string) web.AdminPage {
	rows := make([]web.AdminRow, 0, len(d.Recent))
	for _, entry := range d.Recent {
		rows = append(rows, web.AdminRow{
			Email:     entry.Email,
			CreatedAt: entry.CreatedAt.UTC().Format(constants.DisplayDateTimeFormat),
		})
	}

	return web.AdminPage{
		UserEmail:  userEmail,
		Total:      d.Total,
		Last7Days:  d.Last7Days,
		Last30Days: d.Last30Days,
		Recent:     rows,
	}
}
