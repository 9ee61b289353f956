package databricks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
)

// List prices are joined on the price period active at usage time.
const pricedUsage = `
		FROM system.billing.usage u
		JOIN system.billing.list_prices lp
		  ON u.sku_name = lp.sku_name
		 AND u.cloud = lp.cloud
		 AND u.usage_start_time >= lp.price_start_time
		 AND (lp.price_end_time IS NULL OR u.usage_start_time < lp.price_end_time)`

var mtdQuery = `
		SELECT
		  CAST(u.workspace_id AS STRING) AS workspace_id,
		  u.billing_origin_product       AS product,
		  ROUND(SUM(u.usage_quantity * lp.pricing.default), 2) AS cost,
		  ANY_VALUE(lp.currency_code)    AS currency` + pricedUsage + `
		WHERE u.usage_date >= ?
		GROUP BY 1, 2
		ORDER BY cost DESC`

var dailyQuery = `
		SELECT
		  CAST(u.usage_date AS STRING) AS day,
		  ROUND(SUM(u.usage_quantity * lp.pricing.default), 2) AS cost` + pricedUsage + `
		WHERE u.usage_date >= ? AND u.usage_date <= ?
		GROUP BY 1
		ORDER BY 1`

func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"

	monthStart := cost.MonthStart(p.clock.Now()).Format(domain.DateLayout)
	rows, err := p.db.QueryContext(ctx, mtdQuery, monthStart)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, fmt.Errorf("billing query failed: %w", err))
	}
	defer rows.Close()

	var items []domain.CostLineItem
	for rows.Next() {
		var workspaceID, product, currency sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&workspaceID, &product, &amount, &currency); err != nil {
			return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
		}

		item := domain.CostLineItem{
			Project:  p.cfg.Workspace(),
			Service:  product.String,
			Cost:     cost.RoundCost(amount.Float64),
			Currency: domain.DefaultCurrency,
		}
		if workspaceID.Valid && workspaceID.String != "" {
			item.Project = workspaceID.String
		}
		if currency.Valid && currency.String != "" {
			item.Currency = currency.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	cost.SortByCost(items)
	return domain.Ok(items)
}

func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"

	start, end := cost.DailyRange(p.clock.Now(), days)
	rows, err := p.db.QueryContext(ctx, dailyQuery, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, fmt.Errorf("billing query failed: %w", err))
	}
	defer rows.Close()

	var reported []domain.DailyCost
	for rows.Next() {
		var day string
		var amount sql.NullFloat64
		if err := rows.Scan(&day, &amount); err != nil {
			return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
		}
		reported = append(reported, domain.DailyCost{Date: day, Cost: amount.Float64})
	}
	if err := rows.Err(); err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	return domain.Ok(cost.FillDaily(start, end, reported))
}
