package dataset

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/model"
)

// record is one table row keyed by lower-cased header.
type record map[string]string

func (r record) str(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

func (r record) float(keys ...string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(r.str(keys...), ",", ""), 64)
	return f
}

func (r record) int(keys ...string) int {
	return int(math.Round(r.float(keys...)))
}

// toRecords pairs each row with the header row. Short rows leave the
// missing columns empty.
func toRecords(rows [][]string) []record {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	out := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read csv %s", path)
		}
		rows = append(rows, row)
	}
	return toRecords(rows), nil
}

func readXLSX(path string) ([]record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("dataset: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return toRecords(rows), nil
}

// LoadStopStatsCSV reads per-stop schedule aggregates. Routes are separated
// by ';', '|' or whitespace.
func LoadStopStatsCSV(path string) (map[string]model.StopStats, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.StopStats, len(recs))
	for _, r := range recs {
		id := r.str("stop_id", "id")
		if id == "" {
			continue
		}
		routes := strings.FieldsFunc(r.str("routes", "route_ids"), func(c rune) bool {
			return c == ';' || c == '|' || c == ' ' || c == '\t'
		})
		out[id] = model.StopStats{
			StopID:     id,
			DailyTrips: r.int("daily_trips", "trips"),
			Routes:     routes,
		}
	}
	return out, nil
}

// LoadVacanciesCSV reads the vacancy registry from a CSV export.
func LoadVacanciesCSV(path string) ([]model.VacantProperty, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return vacanciesFromRecords(path, recs), nil
}

// LoadVacanciesXLSX reads the vacancy registry from the first sheet of an
// XLSX workbook.
func LoadVacanciesXLSX(path string) ([]model.VacantProperty, error) {
	recs, err := readXLSX(path)
	if err != nil {
		return nil, err
	}
	return vacanciesFromRecords(path, recs), nil
}

func vacanciesFromRecords(path string, recs []record) []model.VacantProperty {
	out := make([]model.VacantProperty, 0, len(recs))
	var skipped int
	for _, r := range recs {
		lat, lon := r.float("lat", "latitude"), r.float("lon", "lng", "longitude")
		if lat == 0 && lon == 0 {
			skipped++
			continue
		}
		code, ok := neighborhoodCode(r.str("neighborhood", "nhd_num", "neighborhood_code"))
		if !ok {
			code = model.UnmatchedNeighborhood
		}
		out = append(out, model.VacantProperty{
			ID:                 r.str("id", "parcel_id", "handle"),
			Address:            normalizeName(r.str("address", "site_address")),
			NeighborhoodCode:   code,
			Location:           model.LatLon{Lat: lat, Lon: lon},
			Condition:          r.int("condition", "condition_rating"),
			TaxDelinquentYears: r.int("tax_delinquent_years", "tax_years_delinquent"),
			ViolationCount:     r.int("violation_count", "violations"),
			LotSqFt:            r.float("lot_sq_ft", "lot_sqft"),
			OwnerClass:         ownerClass(r.str("owner_class", "owner")),
			LandUse:            strings.ToLower(r.str("land_use")),
			PropertyType:       strings.ToLower(r.str("property_type", "type")),
			NearbyComplaints:   r.int("nearby_complaints"),
		})
	}
	if skipped > 0 {
		zap.L().Warn("dataset: skipped vacancies without coordinates",
			zap.String("path", path), zap.Int("skipped", skipped))
	}
	return out
}

func ownerClass(raw string) string {
	switch s := strings.ToLower(raw); {
	case s == model.OwnerLRA || strings.Contains(s, "land reutilization"):
		return model.OwnerLRA
	case s == model.OwnerCity || strings.Contains(s, "city of"):
		return model.OwnerCity
	case s == "":
		return ""
	default:
		return model.OwnerPrivate
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "01/02/2006"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("dataset: unrecognized date %q", s)
}

// LoadComplaintsCSV reads the 311 complaint log. Rows with unparseable
// dates are skipped.
func LoadComplaintsCSV(path string) ([]model.Complaint, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Complaint, 0, len(recs))
	var skipped int
	for _, r := range recs {
		date, err := parseDate(r.str("date", "datetimeinit", "created"))
		if err != nil {
			skipped++
			continue
		}
		code, ok := neighborhoodCode(r.str("neighborhood", "nhd_num", "neighborhood_code"))
		if !ok {
			code = model.UnmatchedNeighborhood
		}
		out = append(out, model.Complaint{
			ID:               r.str("id", "requestid"),
			Category:         r.str("category", "problemcode"),
			NeighborhoodCode: code,
			Date:             date,
		})
	}
	if skipped > 0 {
		zap.L().Warn("dataset: skipped complaints with bad dates",
			zap.String("path", path), zap.Int("skipped", skipped))
	}
	return out, nil
}

// LoadWeatherCSV reads daily counts joined with weather observations and
// returns them in chronological order.
func LoadWeatherCSV(path string) ([]model.DailyWeather, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyWeather, 0, len(recs))
	for i, r := range recs {
		date, err := parseDate(r.str("date"))
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: weather row %d", i+1)
		}
		out = append(out, model.DailyWeather{
			Date:         date,
			Count:        r.float("count", "complaints"),
			PrecipInches: r.float("precip_inches", "prcp"),
			TempHighF:    r.float("temp_high_f", "tmax"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// LoadCountsJSON reads a per-neighborhood count table such as
// {"1": 120, "02": 85}. Keys are normalized to two-digit codes.
func LoadCountsJSON(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "dataset: decode counts %s", path)
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		code, ok := neighborhoodCode(k)
		if !ok {
			return nil, eris.Errorf("dataset: %s: invalid neighborhood key %q", path, k)
		}
		out[code] += int(math.Round(v))
	}
	return out, nil
}

type demographicsRow struct {
	Code      json.RawMessage `json:"code"`
	Pop2010   int             `json:"pop_2010"`
	Pop2020   int             `json:"pop_2020"`
	PopChange *float64        `json:"pop_change_10_20"`
}

// LoadDemographicsJSON reads an array of census rows. A missing percent
// change is derived from the two population counts.
func LoadDemographicsJSON(path string) (map[string]model.Demographics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	var rows []demographicsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "dataset: decode demographics %s", path)
	}
	out := make(map[string]model.Demographics, len(rows))
	for _, r := range rows {
		code, ok := neighborhoodCode(strings.Trim(string(r.Code), `"`))
		if !ok {
			return nil, eris.Errorf("dataset: %s: invalid neighborhood code %q", path, r.Code)
		}
		d := model.Demographics{Code: code, Pop2010: r.Pop2010, Pop2020: r.Pop2020}
		switch {
		case r.PopChange != nil:
			d.PopChange10to20 = *r.PopChange
		case r.Pop2010 > 0:
			d.PopChange10to20 = math.Round(float64(r.Pop2020-r.Pop2010)/float64(r.Pop2010)*1000) / 10
		}
		out[code] = d
	}
	return out, nil
}
