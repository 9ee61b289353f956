package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"google.golang.org/api/iterator"
)

const mtdQuery = `
SELECT
  project.name AS project,
  service.description AS service,
  ROUND(SUM(cost), 2) AS cost,
  ANY_VALUE(currency) AS currency
FROM %s
WHERE usage_start_time >= TIMESTAMP_TRUNC(CURRENT_TIMESTAMP(), MONTH)
GROUP BY 1, 2
ORDER BY cost DESC`

const dailyQuery = `
SELECT
  FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) AS date,
  ROUND(SUM(cost), 2) AS cost
FROM %s
WHERE DATE(usage_start_time) >= DATE_SUB(CURRENT_DATE(), INTERVAL @days DAY)
GROUP BY 1
ORDER BY 1`

type mtdRow struct {
	Project  bigquery.NullString `bigquery:"project"`
	Service  bigquery.NullString `bigquery:"service"`
	Cost     float64             `bigquery:"cost"`
	Currency bigquery.NullString `bigquery:"currency"`
}

type dailyRow struct {
	Date string  `bigquery:"date"`
	Cost float64 `bigquery:"cost"`
}

func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"

	var items []domain.CostLineItem
	err := p.readRows(ctx, fmt.Sprintf(mtdQuery, p.cfg.billingSource()), nil, func(it rowIterator) error {
		var row mtdRow
		if err := it.Next(&row); err != nil {
			return err
		}
		currency := row.Currency.StringVal
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		items = append(items, domain.CostLineItem{
			Project:  row.Project.StringVal,
			Service:  row.Service.StringVal,
			Cost:     row.Cost,
			Currency: currency,
		})
		return nil
	})
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	if items == nil {
		items = []domain.CostLineItem{}
	}
	cost.SortByCost(items)
	return domain.Ok(items)
}

func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"

	params := []bigquery.QueryParameter{{Name: "days", Value: days}}
	var reported []domain.DailyCost
	err := p.readRows(ctx, fmt.Sprintf(dailyQuery, p.cfg.billingSource()), params, func(it rowIterator) error {
		var row dailyRow
		if err := it.Next(&row); err != nil {
			return err
		}
		reported = append(reported, domain.DailyCost{Date: row.Date, Cost: row.Cost})
		return nil
	})
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	start, end := cost.DailyRange(p.clock.Now(), days)
	return domain.Ok(cost.FillDaily(start, end, reported))
}

// readRows runs sql and calls next until the iterator is exhausted.
func (p *Provider) readRows(
	ctx context.Context,
	sql string,
	params []bigquery.QueryParameter,
	next func(rowIterator) error,
) error {
	runner, err := p.connectBilling(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, runner)

	it, err := runner.Read(ctx, sql, params)
	if err != nil {
		return err
	}

	for {
		err := next(it)
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read billing rows: %w", err)
		}
	}
}
