package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

var catalogue = map[models.VehicleCategory][][2]string{
	models.CategoryBike: {
		{"Honda", "Activa"}, {"Bajaj", "Pulsar"}, {"TVS", "Jupiter"},
		{"Royal Enfield", "Classic 350"}, {"Yamaha", "FZ"},
	},
	models.CategoryCar: {
		{"Maruti", "Swift"}, {"Hyundai", "Creta"}, {"Tata", "Nexon"},
		{"Mahindra", "XUV700"}, {"Toyota", "Innova"},
	},
}

var garages = []string{"City Motors", "Highway Service Point", "AutoCare Hub", ""}

// simVehicle is the simulator's local model of a registered vehicle.
type simVehicle struct {
	vehicle models.Vehicle
	dailyKm float64
}

type simulator struct {
	apiURL string
	token  string
	client *http.Client
	rng    *rand.Rand
	day    time.Time

	// serviceChance is the probability that an overdue vehicle is serviced
	// on a given simulated day.
	serviceChance float64
}

func (s *simulator) do(ctx context.Context, method, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (s *simulator) date(offsetDays int) string {
	return fleet.FormatDate(s.day.AddDate(0, 0, offsetDays))
}

// newVehicle draws a plausible vehicle: last serviced within the past
// interval, documents expiring anywhere from last month to next year.
func (s *simulator) newVehicle(i int) models.Vehicle {
	category := models.CategoryBike
	if s.rng.Intn(3) == 0 {
		category = models.CategoryCar
	}
	usage := models.UsagePrivate
	if s.rng.Intn(4) == 0 {
		usage = models.UsageCommercial
	}
	pick := catalogue[category][s.rng.Intn(len(catalogue[category]))]
	odometer := 2000 + s.rng.Intn(40000)

	v := models.Vehicle{
		RegistrationNumber: fmt.Sprintf("SIM%02d%c%c%04d", i+1, 'A'+rune(s.rng.Intn(26)), 'A'+rune(s.rng.Intn(26)), s.rng.Intn(10000)),
		Make:               pick[0],
		Model:              pick[1],
		Category:           category,
		Usage:              usage,
		InsuranceValidity:  s.date(s.rng.Intn(400) - 30),
		PollutionValidity:  s.date(s.rng.Intn(200) - 30),
		LastServiceDate:    s.date(-s.rng.Intn(150)),
		LastServiceKm:      odometer - s.rng.Intn(2000),
		CurrentOdometer:    odometer,
	}
	if usage == models.UsageCommercial {
		v.FitnessValidity = s.date(s.rng.Intn(365) - 15)
		v.RoadTaxValidity = s.date(s.rng.Intn(365) - 15)
	} else {
		v.RegistrationValidity = s.date(365 * (1 + s.rng.Intn(10)))
	}
	return v
}

func (s *simulator) register(ctx context.Context, v models.Vehicle) (*simVehicle, error) {
	var created models.Vehicle
	if err := s.do(ctx, http.MethodPost, "/vehicles", v, &created); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"vehicle_id":   created.ID,
		"registration": created.RegistrationNumber,
		"category":     created.Category,
	}).Info("Created vehicle")

	// bikes ride less than cars, both around the fleet average
	daily := float64(fleet.AverageDailyKm) * (0.5 + s.rng.Float64())
	if created.EffectiveCategory() == models.CategoryCar {
		daily *= 1.5
	}
	return &simVehicle{vehicle: created, dailyKm: daily}, nil
}

// drive advances one vehicle by a simulated day: it posts the new odometer
// reading and, when the vehicle has become overdue, sometimes a service.
func (s *simulator) drive(ctx context.Context, sv *simVehicle) error {
	km := fleet.CurrentKm(sv.vehicle) + int(sv.dailyKm*(0.5+s.rng.Float64()))
	reading := models.KmReading{Date: s.date(0), Kilometers: km}
	if err := s.do(ctx, http.MethodPost, "/vehicles/"+sv.vehicle.ID+"/readings", reading, nil); err != nil {
		return err
	}
	sv.vehicle = fleet.AddKmReading(sv.vehicle, reading)

	st := fleet.EvaluateService(sv.vehicle, s.day)
	if st.Status != fleet.StatusOverdue || s.rng.Float64() >= s.serviceChance {
		return nil
	}

	record := models.ServiceRecord{
		MotorcycleID: sv.vehicle.ID,
		Date:         s.date(0),
		Kilometers:   km,
		WorkDone:     "Periodic service",
		Amount:       int64(800 + s.rng.Intn(4000)),
		Garage:       garages[s.rng.Intn(len(garages))],
	}
	var created models.ServiceRecord
	if err := s.do(ctx, http.MethodPost, "/services", record, &created); err != nil {
		return err
	}
	sv.vehicle = fleet.ApplyServiceRecord(sv.vehicle, created)
	log.WithFields(log.Fields{
		"vehicle_id": sv.vehicle.ID,
		"reason":     st.Message,
		"amount":     created.Amount,
	}).Info("Serviced vehicle")
	return nil
}

func (s *simulator) tick(ctx context.Context, fleetState []*simVehicle) {
	for _, sv := range fleetState {
		if err := s.drive(ctx, sv); err != nil {
			log.WithError(err).WithField("vehicle_id", sv.vehicle.ID).Error("Failed to advance vehicle")
		}
	}
	log.WithField("day", s.date(0)).Info("Simulated day completed")
	s.day = s.day.AddDate(0, 0, 1)
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			return n
		}
		log.WithField(key, val).Warn("Ignoring invalid value")
	}
	return fallback
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	fleetSize := envInt("FLEET_SIZE", 10)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2)) * time.Second

	s := &simulator{
		apiURL:        apiURL,
		token:         os.Getenv("SIM_AUTH_TOKEN"),
		client:        &http.Client{Timeout: 10 * time.Second},
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		day:           time.Now(),
		serviceChance: 0.5,
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting fleet simulation")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fleetState := make([]*simVehicle, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		sv, err := s.register(ctx, s.newVehicle(i))
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		fleetState = append(fleetState, sv)
	}

	log.WithField("created_vehicles", len(fleetState)).Info("Vehicle creation completed")
	if len(fleetState) == 0 {
		log.Error("No vehicles created. Ensure SIM_AUTH_TOKEN belongs to an operator or above and the API is reachable. Exiting.")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Simulation stopped")
			return
		case <-ticker.C:
			s.tick(ctx, fleetState)
		}
	}
}
