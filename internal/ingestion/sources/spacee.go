package sources

import (
	"errors"
	"fmt"
	"strings"

	booking "spaceledger/internal/booking/domain"
	"spaceledger/internal/ingestion/normalize"
)

// SourceSpacee identifies the Spacee 予約実績 export.
const SourceSpacee = "spacee"

// The export repeats the 会場名 label for the internal short name and the
// public listing title, so every field is read by position.
const (
	spaceeColReservation = iota
	spaceeColBookedDate
	spaceeColVenueShort
	spaceeColVenueLong
	spaceeColRoom
	spaceeColUsageDate
	spaceeColStart
	spaceeColEnd
	spaceeColDuration
	spaceeColGuest
	spaceeColPhone
	spaceeColGuestCount
	spaceeColPurpose
	spaceeColPurposeDetail
	spaceeColStatus
	spaceeColGross
	spaceeColCommission
	spaceeColNet
	spaceeColPayMethod
	spaceeColNote

	spaceeColumnCount
)

// NewSpaceeParser returns the parser for Spacee reservation exports.
func NewSpaceeParser() Parser {
	return Parser{
		Source:          SourceSpacee,
		Label:           "スペイシー 予約実績CSV",
		ValidateHeaders: spaceeHeadersOK,
		Parse:           parseSpacee,
	}
}

func spaceeHeadersOK(headers []string) bool {
	if len(headers) < spaceeColumnCount {
		return false
	}
	if !strings.Contains(normalize.Fold(headers[spaceeColReservation]), "予約番号") {
		return false
	}
	if normalize.Fold(headers[spaceeColVenueShort]) != "会場名" || normalize.Fold(headers[spaceeColVenueLong]) != "会場名" {
		return false
	}
	return strings.Contains(normalize.Fold(headers[spaceeColUsageDate]), "利用日") &&
		strings.Contains(normalize.Fold(headers[spaceeColStatus]), "ステータス")
}

func parseSpacee(content string) (ParseResult, error) {
	var res ParseResult
	recs, err := records(content)
	if err != nil {
		return res, fmt.Errorf("spacee: read csv: %w", err)
	}
	if len(recs) == 0 {
		return res, errors.New("spacee: empty file")
	}
	first := 2
	if !spaceeHeadersOK(recs[0]) {
		// Exports prepend one banner line linking back to the admin
		// console. Skip exactly one line, never more.
		recs = recs[1:]
		first = 3
		if len(recs) == 0 || !spaceeHeadersOK(recs[0]) {
			return res, errors.New("spacee: header row not found")
		}
	}
	for _, row := range buildRows(recs[0], recs[1:], first) {
		externalID := normalize.Fold(row.At(spaceeColReservation))
		if externalID == "" {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: "missing reservation number"})
			continue
		}
		name := row.At(spaceeColVenueShort)
		if name == "" {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: "missing venue name"})
			continue
		}
		rawUsage := row.At(spaceeColUsageDate)
		usage := normalize.Date(rawUsage)
		if !normalize.IsDate(usage) {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: fmt.Sprintf("invalid usage date %q", rawUsage)})
			continue
		}
		bookingDate := usage
		if d := normalize.Date(row.At(spaceeColBookedDate)); normalize.IsDate(d) {
			bookingDate = d
		}

		start := normalize.Time(row.At(spaceeColStart))
		end := normalize.Time(row.At(spaceeColEnd))
		duration := intField(row.At(spaceeColDuration))
		if duration == 0 {
			duration = normalize.DurationMinutes(start, end)
		}

		gross := normalize.Amount(row.At(spaceeColGross))
		gross, res.Warnings = clampNegativeGross(row.Num, gross, res.Warnings)

		b := booking.Booking{
			Source:        SourceSpacee,
			ExternalID:    externalID,
			DisplayName:   name,
			SubSpaceLabel: row.At(spaceeColRoom),
			BookingDate:   bookingDate,
			UsageDate:     usage,
			StartTime:     start,
			EndTime:       end,
			DurationMin:   duration,
			GrossAmount:   gross,
			NetAmount:     optionalAmount(row.At(spaceeColNet)),
			Commission:    optionalAmount(row.At(spaceeColCommission)),
			GuestName:     row.At(spaceeColGuest),
			GuestCount:    intField(row.At(spaceeColGuestCount)),
			Purpose:       row.At(spaceeColPurpose),
			PurposeDetail: row.At(spaceeColPurposeDetail),
			Status:        spaceeStatus(row.At(spaceeColStatus)),
			Row:           row.Num,
		}
		fillDerivedAmounts(&b)
		if w := amountDivergence(row.Num, b.GrossAmount, b.NetAmount, b.Commission); w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
		if b.Status == booking.StatusCancelled && b.GrossAmount == 0 {
			res.Warnings = append(res.Warnings, Warning{Row: row.Num, Message: "cancelled booking with zero gross amount"})
		}
		res.Bookings = append(res.Bookings, b)
	}
	return res, nil
}

// spaceeStatus maps the two-valued status code. 成約 is an exact match;
// anything carrying a cancellation token is cancelled, the rest pending.
func spaceeStatus(raw string) booking.Status {
	s := normalize.Fold(raw)
	switch {
	case s == "成約":
		return booking.StatusConfirmed
	case strings.Contains(s, "取消"), strings.Contains(s, "キャンセル"):
		return booking.StatusCancelled
	default:
		return booking.StatusPending
	}
}
