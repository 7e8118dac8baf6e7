package marketplace

import (
	"context"
	"time"
)

// PlatformStats is the admin overview returned by /admin/stats
type PlatformStats struct {
	Stats struct {
		TotalRevenue float64 `json:"totalRevenue"`
		TodayRevenue float64 `json:"todayRevenue"`
		TotalProfit  float64 `json:"totalProfit"`
		TotalOrders  int     `json:"totalOrders"`
		TotalUsers   int     `json:"totalUsers"`
	} `json:"stats"`
	RoleDistribution []RoleCount  `json:"roleDistribution"`
	DailySales       []DailySales `json:"dailySales"`
	RecentOrders     []RecentSale `json:"recentOrders"`
	TopMeals         []TopMeal    `json:"topMeals"`
}

type RoleCount struct {
	Role  string `json:"_id"`
	Count int    `json:"count"`
}

type DailySales struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Revenue float64 `json:"revenue"`
}

type RecentSale struct {
	OrderID  string  `json:"orderId"`
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	Date     string  `json:"date"`
}

type TopMeal struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Sales int    `json:"sales"`
}

// DaySales is one point of the weekly revenue chart
type DaySales struct {
	Date    string
	Weekday time.Weekday
	Revenue float64
}

// LastSevenDays returns revenue for the seven days ending on now, oldest
// first. Days without sales report zero.
func (s PlatformStats) LastSevenDays(now time.Time) []DaySales {
	byDate := make(map[string]float64, len(s.DailySales))
	for _, d := range s.DailySales {
		byDate[d.Date] = d.Revenue
	}

	days := make([]DaySales, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format(time.DateOnly)
		days = append(days, DaySales{Date: date, Weekday: day.Weekday(), Revenue: byDate[date]})
	}
	return days
}

// RoleShare returns the percentage of users holding role, rounded to the nearest whole number
func (s PlatformStats) RoleShare(role string) int {
	if s.Stats.TotalUsers == 0 {
		return 0
	}
	for _, rc := range s.RoleDistribution {
		if rc.Role == role {
			return int(float64(rc.Count)*100/float64(s.Stats.TotalUsers) + 0.5)
		}
	}
	return 0
}

// PlatformStats fetches the admin overview
func (c *Client) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var out PlatformStats
	if err := c.secure.Get(ctx, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
