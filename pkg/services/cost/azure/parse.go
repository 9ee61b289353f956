package azure

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
)

var costColumns = []string{"pretaxcost", "cost", "totalcost", "costusd"}

type columns map[string]int

func buildColumnMap(result armcostmanagement.QueryResult) (columns, error) {
	if result.Properties == nil {
		return nil, fmt.Errorf("cost query returned no properties")
	}

	cols := make(columns, len(result.Properties.Columns))
	for i, col := range result.Properties.Columns {
		if col == nil || col.Name == nil {
			continue
		}
		cols[strings.ToLower(*col.Name)] = i
	}
	return cols, nil
}

func (c columns) find(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func parseServiceCosts(result armcostmanagement.QueryResult, subscription string) ([]domain.CostLineItem, error) {
	cols, err := buildColumnMap(result)
	if err != nil {
		return nil, err
	}
	costIdx, ok := cols.find(costColumns...)
	if !ok {
		return nil, fmt.Errorf("cost column missing from query result")
	}
	serviceIdx, ok := cols.find("servicename")
	if !ok {
		return nil, fmt.Errorf("ServiceName column missing from query result")
	}
	currencyIdx, hasCurrency := cols.find("currency")

	items := make([]domain.CostLineItem, 0, len(result.Properties.Rows))
	for _, row := range result.Properties.Rows {
		if len(row) <= max(costIdx, serviceIdx) {
			continue
		}
		amount, err := parseNumber(row[costIdx])
		if err != nil {
			return nil, err
		}
		currency := domain.DefaultCurrency
		if hasCurrency && currencyIdx < len(row) {
			if s, ok := row[currencyIdx].(string); ok && s != "" {
				currency = s
			}
		}
		items = append(items, domain.CostLineItem{
			Project:  subscription,
			Service:  fmt.Sprint(row[serviceIdx]),
			Cost:     cost.RoundCost(amount),
			Currency: currency,
		})
	}
	return items, nil
}

func parseDailyCosts(result armcostmanagement.QueryResult) ([]domain.DailyCost, error) {
	cols, err := buildColumnMap(result)
	if err != nil {
		return nil, err
	}
	costIdx, ok := cols.find(costColumns...)
	if !ok {
		return nil, fmt.Errorf("cost column missing from query result")
	}
	dateIdx, ok := cols.find("usagedate", "billingmonth")
	if !ok {
		return nil, fmt.Errorf("UsageDate column missing from query result")
	}

	var out []domain.DailyCost
	for _, row := range result.Properties.Rows {
		if len(row) <= max(costIdx, dateIdx) {
			continue
		}
		amount, err := parseNumber(row[costIdx])
		if err != nil {
			return nil, err
		}
		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DailyCost{Date: date, Cost: amount})
	}
	return out, nil
}

func parseNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected cost value type %T", v)
	}
}

// parseDate accepts the numeric yyyymmdd form Cost Management uses for
// UsageDate as well as ISO timestamps.
func parseDate(v any) (string, error) {
	var s string
	switch d := v.(type) {
	case float64:
		s = strconv.FormatInt(int64(d), 10)
	case int64:
		s = strconv.FormatInt(d, 10)
	case int:
		s = strconv.Itoa(d)
	case json.Number:
		s = d.String()
	case string:
		s = d
	default:
		return "", fmt.Errorf("unexpected date value type %T", v)
	}

	if len(s) == 8 && isDigits(s) {
		return fmt.Sprintf("%s-%s-%s", s[0:4], s[4:6], s[6:8]), nil
	}
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		return s[:10], nil
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
