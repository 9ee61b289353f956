package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/shopspring/decimal"
)

const costMetric = "UnblendedCost"

func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"
	if !p.cfg.CostExplorer {
		return cost.Unsupported[[]domain.CostLineItem](Name, op)
	}

	c, err := p.connect(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	now := p.clock.Now()
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(cost.MonthStart(now), tomorrow(now)),
		Granularity: types.GranularityMonthly,
		Metrics:     []string{costMetric},
		GroupBy: []types.GroupDefinition{
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String(string(types.DimensionLinkedAccount)),
			},
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String(string(types.DimensionService)),
			},
		},
	}

	type groupKey struct{ account, service string }
	totals := make(map[groupKey]decimal.Decimal)
	currency := make(map[groupKey]string)
	var order []groupKey

	err = eachPage(ctx, c.costs, input, func(out *costexplorer.GetCostAndUsageOutput) error {
		for _, period := range out.ResultsByTime {
			for _, group := range period.Groups {
				if len(group.Keys) < 2 {
					continue
				}
				amount, unit, err := parseMetric(group.Metrics[costMetric])
				if err != nil {
					return err
				}
				key := groupKey{account: group.Keys[0], service: group.Keys[1]}
				if _, seen := totals[key]; !seen {
					order = append(order, key)
					currency[key] = unit
				}
				totals[key] = totals[key].Add(amount)
			}
		}
		return nil
	})
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	items := make([]domain.CostLineItem, 0, len(order))
	for _, key := range order {
		items = append(items, domain.CostLineItem{
			Project:  key.account,
			Service:  key.service,
			Cost:     totals[key].Round(2).InexactFloat64(),
			Currency: currency[key],
		})
	}
	cost.SortByCost(items)
	return domain.Ok(items)
}

func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"
	if !p.cfg.CostExplorer {
		return cost.Unsupported[[]domain.DailyCost](Name, op)
	}

	c, err := p.connect(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	start, end := cost.DailyRange(p.clock.Now(), days)
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(start, end.AddDate(0, 0, 1)),
		Granularity: types.GranularityDaily,
		Metrics:     []string{costMetric},
	}

	var reported []domain.DailyCost
	err = eachPage(ctx, c.costs, input, func(out *costexplorer.GetCostAndUsageOutput) error {
		for _, period := range out.ResultsByTime {
			if period.TimePeriod == nil || period.TimePeriod.Start == nil {
				continue
			}
			amount, _, err := parseMetric(period.Total[costMetric])
			if err != nil {
				return err
			}
			reported = append(reported, domain.DailyCost{
				Date: aws.ToString(period.TimePeriod.Start),
				Cost: amount.InexactFloat64(),
			})
		}
		return nil
	})
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	return domain.Ok(cost.FillDaily(start, end, reported))
}

func eachPage(
	ctx context.Context,
	client costExplorerAPI,
	input *costexplorer.GetCostAndUsageInput,
	fn func(*costexplorer.GetCostAndUsageOutput) error,
) error {
	for {
		out, err := client.GetCostAndUsage(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to get cost and usage: %w", err)
		}
		if err := fn(out); err != nil {
			return err
		}
		if out.NextPageToken == nil || *out.NextPageToken == "" {
			return nil
		}
		input.NextPageToken = out.NextPageToken
	}
}

func parseMetric(m types.MetricValue) (decimal.Decimal, string, error) {
	if m.Amount == nil {
		return decimal.Zero, domain.DefaultCurrency, nil
	}
	amount, err := decimal.NewFromString(*m.Amount)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid cost amount %q: %w", *m.Amount, err)
	}
	unit := aws.ToString(m.Unit)
	if unit == "" {
		unit = domain.DefaultCurrency
	}
	return amount, unit, nil
}

func dateInterval(start, end time.Time) *types.DateInterval {
	return &types.DateInterval{
		Start: aws.String(start.Format(domain.DateLayout)),
		End:   aws.String(end.Format(domain.DateLayout)),
	}
}

func tomorrow(now time.Time) time.Time {
	return now.UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
}
