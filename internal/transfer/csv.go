// Package transfer moves vehicle records in and out of spreadsheets as CSV.
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ukydev/fleet-admin/internal/models"
)

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing required column")

// Columns is the header written on export, in order.
var Columns = []string{
	"id",
	"registration_number",
	"chassis_number",
	"engine_number",
	"make",
	"model",
	"vehicle_category",
	"vehicle_usage",
	"registration_validity",
	"insurance_validity",
	"pollution_validity",
	"fitness_validity",
	"road_tax_validity",
	"permit_validity",
	"service_interval_months",
	"service_interval_kms",
	"last_service_date",
	"last_service_km",
	"current_odometer",
}

var requiredColumns = []string{"registration_number", "make", "model"}

// RowError describes a rejected import row. Row is 1-based and counts the
// header, so it matches the line shown by spreadsheet tools.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult holds the accepted vehicles and the rejected rows.
type ImportResult struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Errors   []RowError       `json:"errors"`
}

// Importer parses vehicle CSV files.
type Importer struct {
	validate *validator.Validate
	newID    func() string
}

// NewImporter returns an importer assigning random UUIDs to rows without id.
func NewImporter() *Importer {
	return &Importer{validate: validator.New(), newID: uuid.NewString}
}

// Export writes vehicles as CSV with the Columns header.
func Export(w io.Writer, vehicles []models.Vehicle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, v := range vehicles {
		if err := cw.Write(toRecord(v)); err != nil {
			return fmt.Errorf("write vehicle %s: %w", v.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRecord(v models.Vehicle) []string {
	return []string{
		v.ID,
		v.RegistrationNumber,
		v.ChassisNumber,
		v.EngineNumber,
		v.Make,
		v.Model,
		string(v.Category),
		string(v.Usage),
		v.RegistrationValidity,
		v.InsuranceValidity,
		v.PollutionValidity,
		v.FitnessValidity,
		v.RoadTaxValidity,
		v.PermitValidity,
		itoa(v.ServiceIntervalMonths),
		itoa(v.ServiceIntervalKms),
		v.LastServiceDate,
		itoa(v.LastServiceKm),
		itoa(v.CurrentOdometer),
	}
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Import reads vehicles from r. Header names are matched case-insensitively
// and may appear in any order; unknown columns are ignored. Rows that fail
// to parse or validate are reported in ImportResult.Errors and skipped.
func (im *Importer) Import(r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	result := &ImportResult{Vehicles: []models.Vehicle{}, Errors: []RowError{}}
	seen := make(map[string]int)
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		v, err := im.parseRow(index, record)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		key := strings.ToUpper(v.RegistrationNumber)
		if first, dup := seen[key]; dup {
			result.Errors = append(result.Errors, RowError{
				Row:     row,
				Message: fmt.Sprintf("duplicate registration number %s (first seen on row %d)", v.RegistrationNumber, first),
			})
			continue
		}
		seen[key] = row
		result.Vehicles = append(result.Vehicles, v)
	}
	return result, nil
}

func (im *Importer) parseRow(index map[string]int, record []string) (models.Vehicle, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	var parseErr error
	getInt := func(col string) int {
		s := get(col)
		if s == "" || parseErr != nil {
			return 0
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			parseErr = fmt.Errorf("%s: %q is not a whole number", col, s)
		}
		return n
	}

	v := models.Vehicle{
		ID:                    get("id"),
		RegistrationNumber:    models.NormalizeRegistration(get("registration_number")),
		ChassisNumber:         get("chassis_number"),
		EngineNumber:          get("engine_number"),
		Make:                  get("make"),
		Model:                 get("model"),
		Category:              models.VehicleCategory(strings.ToLower(get("vehicle_category"))),
		Usage:                 models.VehicleUsage(strings.ToLower(get("vehicle_usage"))),
		RegistrationValidity:  get("registration_validity"),
		InsuranceValidity:     get("insurance_validity"),
		PollutionValidity:     get("pollution_validity"),
		FitnessValidity:       get("fitness_validity"),
		RoadTaxValidity:       get("road_tax_validity"),
		PermitValidity:        get("permit_validity"),
		ServiceIntervalMonths: getInt("service_interval_months"),
		ServiceIntervalKms:    getInt("service_interval_kms"),
		LastServiceDate:       get("last_service_date"),
		LastServiceKm:         getInt("last_service_km"),
		CurrentOdometer:       getInt("current_odometer"),
		KmReadings:            []models.KmReading{},
	}
	if parseErr != nil {
		return models.Vehicle{}, parseErr
	}
	if err := im.validate.Struct(v); err != nil {
		return models.Vehicle{}, describe(err)
	}
	if v.ID == "" {
		v.ID = im.newID()
	}
	return v, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// describe turns validator errors into a short message naming the fields.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
