package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"
	"daladala/internal/seating"
	"daladala/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the driver's trip manifest as a PDF.
type DocsService struct {
	Store     repositories.Store
	Clock     func() time.Time
	RequestID string
	Loader    func(ctx context.Context, tripID int64, travelDate string) (manifestData, error)
}

type manifestData struct {
	TripID        int64
	VehicleID     int64
	DriverID      int64
	TravelDate    string
	DepartureTime string
	TotalSeats    int
	Rows          []manifestRow
}

type manifestRow struct {
	SeatNumber    string
	PassengerName string
	BookingID     int64
	Pickup        domain.StopID
	Dropoff       domain.StopID
	Boarded       bool
	PaymentStatus string
	TotalAmount   int64
}

// GenerateTripManifest lists every occupied seat of a trip run with its
// passenger, segment and boarding state. Only admins and the trip's
// driver may download it.
func (s DocsService) GenerateTripManifest(ctx context.Context, caller domain.RequestContext, tripID int64, travelDate string) ([]byte, string, error) {
	if tripID <= 0 {
		return nil, "", domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	data, err := s.load(ctx, tripID, travelDate)
	if err != nil {
		return nil, "", err
	}
	if !canOperateTrip(caller, models.Trip{ID: data.TripID, DriverID: data.DriverID}) {
		return nil, "", domain.AccessDeniedError{Resource: fmt.Sprintf("trip %d manifest", data.TripID), UserID: caller.UserID}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_manifest",
		fmt.Sprintf("trip_id=%d date=%s rows=%d", data.TripID, data.TravelDate, len(data.Rows)))
	return buildManifestPDF(data, clockOrNow(s.Clock))
}

func (s DocsService) load(ctx context.Context, tripID int64, travelDate string) (manifestData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, tripID, travelDate)
	}
	trip, err := s.Store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return manifestData{}, err
	}
	date, err := resolveTravelDate(trip, travelDate)
	if err != nil {
		return manifestData{}, err
	}
	seats, err := s.Store.Seats().ListByVehicle(ctx, trip.VehicleID)
	if err != nil {
		return manifestData{}, err
	}
	occupied, err := s.Store.Assignments().ListOccupied(ctx, trip.ID, date)
	if err != nil {
		return manifestData{}, err
	}

	bookings := map[int64]models.Booking{}
	rows := make([]manifestRow, 0, len(occupied))
	for _, a := range occupied {
		b, ok := bookings[a.BookingID]
		if !ok {
			if b, err = s.Store.Bookings().GetByID(ctx, a.BookingID); err != nil {
				return manifestData{}, err
			}
			bookings[a.BookingID] = b
		}
		rows = append(rows, manifestRow{
			SeatNumber:    a.SeatNumber,
			PassengerName: a.PassengerName,
			BookingID:     a.BookingID,
			Pickup:        a.PickupStopID,
			Dropoff:       a.DropoffStopID,
			Boarded:       a.BoardedAt != nil,
			PaymentStatus: b.PaymentStatus,
			TotalAmount:   b.TotalAmount,
		})
	}
	sortManifestRows(rows)

	return manifestData{
		TripID:        trip.ID,
		VehicleID:     trip.VehicleID,
		DriverID:      trip.DriverID,
		TravelDate:    date,
		DepartureTime: trip.DepartureTime,
		TotalSeats:    len(seats),
		Rows:          rows,
	}, nil
}

func sortManifestRows(rows []manifestRow) {
	numbers := make([]string, 0, len(rows))
	bySeat := map[string][]manifestRow{}
	for _, r := range rows {
		if _, ok := bySeat[r.SeatNumber]; !ok {
			numbers = append(numbers, r.SeatNumber)
		}
		bySeat[r.SeatNumber] = append(bySeat[r.SeatNumber], r)
	}
	seating.SortSeatNumbers(numbers)
	rows = rows[:0]
	for _, n := range numbers {
		rows = append(rows, bySeat[n]...)
	}
}

func buildManifestPDF(d manifestData, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Manifest", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Trip        : #%d", d.TripID),
		fmt.Sprintf("Vehicle     : #%d", d.VehicleID),
		fmt.Sprintf("Driver      : #%d", d.DriverID),
		fmt.Sprintf("Date/Time   : %s %s", safe(d.TravelDate, "-"), safe(timeHM(d.DepartureTime), "-")),
		fmt.Sprintf("Occupied    : %d / %d seats", len(d.Rows), d.TotalSeats),
		fmt.Sprintf("Printed     : %s", printedAt.Format("2006-01-02 15:04")),
	}
	for _, s := range header {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	widths := []float64{16, 52, 22, 30, 22, 48}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Seat", "Passenger", "Booking", "Segment", "Boarded", "Payment"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range d.Rows {
		boarded := "no"
		if r.Boarded {
			boarded = "yes"
		}
		cells := []string{
			r.SeatNumber,
			safe(r.PassengerName, "-"),
			fmt.Sprintf("#%d", r.BookingID),
			fmt.Sprintf("%d -> %d", r.Pickup, r.Dropoff),
			boarded,
			fmt.Sprintf("%s %s", safe(r.PaymentStatus, "-"), utils.FormatShilling(r.TotalAmount)),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(d.Rows) == 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "No seats are occupied for this trip.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("MANIFEST_%d_%s.pdf", d.TripID, safeFilenamePart(d.TravelDate))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
