package hetzner

import (
	"context"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/shopspring/decimal"
)

// rate is the list price of one server at its location.
type rate struct {
	hourly   decimal.Decimal
	monthly  decimal.Decimal
	currency string
}

// MTDCosts estimates month-to-date spend per server type from the current
// fleet: hourly net price times hours alive this month, capped at the
// monthly price. Servers deleted earlier in the month are not visible.
func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"

	servers, err := p.listServers(ctx)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	now := p.clock.Now()
	monthStart := cost.MonthStart(now)

	totals := make(map[string]decimal.Decimal)
	currencies := make(map[string]string)
	var order []string
	for _, server := range servers {
		r, ok := serverRate(server)
		if !ok {
			continue
		}
		hours := activeHours(server.Created, monthStart, now)
		charge := decimal.Min(r.hourly.Mul(hours), r.monthly)

		service := server.ServerType.Name
		if _, seen := totals[service]; !seen {
			order = append(order, service)
			currencies[service] = r.currency
		}
		totals[service] = totals[service].Add(charge)
	}

	items := make([]domain.CostLineItem, 0, len(order))
	for _, service := range order {
		items = append(items, domain.CostLineItem{
			Project:  p.cfg.Project,
			Service:  service,
			Cost:     totals[service].Round(2).InexactFloat64(),
			Currency: currencies[service],
		})
	}
	cost.SortByCost(items)
	return domain.Ok(items)
}

// DailyCosts spreads the same estimate over calendar days.
func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"

	servers, err := p.listServers(ctx)
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	now := p.clock.Now()
	start, end := cost.DailyRange(now, days)

	var reported []domain.DailyCost
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)
		if dayEnd.After(now) {
			dayEnd = now
		}

		total := decimal.Zero
		for _, server := range servers {
			r, ok := serverRate(server)
			if !ok {
				continue
			}
			total = total.Add(r.hourly.Mul(activeHours(server.Created, day, dayEnd)))
		}
		reported = append(reported, domain.DailyCost{
			Date: day.Format(domain.DateLayout),
			Cost: total.InexactFloat64(),
		})
	}
	return domain.Ok(cost.FillDaily(start, end, reported))
}

// activeHours is the number of hours in [from, to) the server existed.
func activeHours(created, from, to time.Time) decimal.Decimal {
	if created.After(from) {
		from = created
	}
	if !to.After(from) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(to.Sub(from).Hours())
}

func serverRate(server *hcloud.Server) (rate, bool) {
	if server == nil || server.ServerType == nil {
		return rate{}, false
	}
	location := serverLocation(server)

	for _, pricing := range server.ServerType.Pricings {
		if pricing.Location == nil || pricing.Location.Name != location {
			continue
		}
		hourly, err := decimal.NewFromString(pricing.Hourly.Net)
		if err != nil {
			return rate{}, false
		}
		monthly, err := decimal.NewFromString(pricing.Monthly.Net)
		if err != nil {
			return rate{}, false
		}
		currency := pricing.Hourly.Currency
		if currency == "" {
			currency = "EUR"
		}
		return rate{hourly: hourly, monthly: monthly, currency: currency}, true
	}
	return rate{}, false
}

func serverLocation(server *hcloud.Server) string {
	if server.Location != nil {
		return server.Location.Name
	}
	if server.Datacenter != nil && server.Datacenter.Location != nil {
		return server.Datacenter.Location.Name
	}
	return ""
}
