package sources

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	booking "spaceledger/internal/booking/domain"
	"spaceledger/internal/ingestion/normalize"
)

// SourceSpacemarket identifies the SpaceMarket 予約一覧 export.
const SourceSpacemarket = "spacemarket"

var (
	spacemarketDigitsRe  = regexp.MustCompile(`^[0-9]+$`)
	spacemarketBracketRe = regexp.MustCompile(`【([^】]+)】`)
)

// Hosts decorate SpaceMarket titles freely, so the venue name has to be
// recovered from free text. These built-in rules cover our own venues;
// operators extend the list through configuration.
var spacemarketDefaultLocations = []LocationRule{
	{Contains: "北新宿", Name: "北新宿スペース"},
	{Contains: "西早稲田", Name: "西早稲田スペース"},
	{Contains: "高田馬場", Name: "高田馬場スペース"},
}

var spacemarketRequired = []string{
	"予約ID",
	"掲載タイトル",
	"利用開始日",
	"予約ステータス",
	"合計金額",
	"決済手数料",
	"サービス手数料",
	"振込金額",
}

// NewSpacemarketParser returns the parser for SpaceMarket reservation
// exports. extra rules take precedence over the built-in venue rules.
func NewSpacemarketParser(extra []LocationRule) Parser {
	rules := make([]LocationRule, 0, len(extra)+len(spacemarketDefaultLocations))
	rules = append(rules, extra...)
	rules = append(rules, spacemarketDefaultLocations...)
	return Parser{
		Source:          SourceSpacemarket,
		Label:           "スペースマーケット 予約一覧CSV",
		ValidateHeaders: spacemarketHeadersOK,
		Parse: func(content string) (ParseResult, error) {
			return parseSpacemarket(content, rules)
		},
	}
}

func spacemarketHeadersOK(headers []string) bool {
	return containsAll(headers, spacemarketRequired)
}

func parseSpacemarket(content string, rules []LocationRule) (ParseResult, error) {
	var res ParseResult
	recs, err := records(content)
	if err != nil {
		return res, fmt.Errorf("spacemarket: read csv: %w", err)
	}
	if len(recs) == 0 {
		return res, errors.New("spacemarket: empty file")
	}
	headers := recs[0]
	if !spacemarketHeadersOK(headers) {
		return res, errors.New("spacemarket: unexpected header layout")
	}
	for _, row := range buildRows(headers, recs[1:], 2) {
		externalID := normalize.Fold(row.Get("予約ID"))
		if !spacemarketDigitsRe.MatchString(externalID) {
			// Ids are numeric; anything else is a summary or separator
			// row the export tacks on.
			continue
		}
		rawUsage := row.Get("利用開始日")
		usage := normalize.Date(rawUsage)
		if !normalize.IsDate(usage) {
			res.Errors = append(res.Errors, RowError{Row: row.Num, Message: fmt.Sprintf("invalid usage date %q", rawUsage)})
			continue
		}
		bookingDate := usage
		if d := normalize.Date(row.Get("予約日")); normalize.IsDate(d) {
			bookingDate = d
		}

		start := normalize.Time(row.Get("開始時刻"))
		end := normalize.Time(row.Get("終了時刻"))

		gross := normalize.Amount(row.Get("合計金額"))
		gross, res.Warnings = clampNegativeGross(row.Num, gross, res.Warnings)

		b := booking.Booking{
			Source:      SourceSpacemarket,
			ExternalID:  externalID,
			DisplayName: spacemarketListingName(row.Get("掲載タイトル"), rules),
			BookingDate: bookingDate,
			UsageDate:   usage,
			StartTime:   start,
			EndTime:     end,
			DurationMin: normalize.DurationMinutes(start, end),
			GrossAmount: gross,
			NetAmount:   optionalAmount(row.Get("振込金額")),
			Commission:  spacemarketCommission(row.Get("決済手数料"), row.Get("サービス手数料")),
			GuestName:   row.Get("ゲスト名"),
			GuestCount:  intField(row.Get("人数")),
			Purpose:     row.Get("利用目的"),
			Status:      spacemarketStatus(row.Get("予約ステータス")),
			Row:         row.Num,
		}
		fillDerivedAmounts(&b)
		if w := amountDivergence(row.Num, b.GrossAmount, b.NetAmount, b.Commission); w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
		res.Bookings = append(res.Bookings, b)
	}
	return res, nil
}

// spacemarketListingName recovers the venue name from a free-text listing
// title. Bracketed names win, then the known-venue rules; otherwise the
// truncated title is kept so the row surfaces as unmapped instead of
// failing the parse.
func spacemarketListingName(title string, rules []LocationRule) string {
	title = strings.TrimSpace(title)
	if m := spacemarketBracketRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, r := range rules {
		if r.Contains != "" && strings.Contains(title, r.Contains) {
			return r.Name
		}
	}
	runes := []rune(title)
	if len(runes) > 20 {
		return string(runes[:20])
	}
	return title
}

// spacemarketCommission sums the two itemized fee columns, keeping
// absence distinct from a zero fee.
func spacemarketCommission(payment, service string) *int64 {
	pay := optionalAmount(payment)
	svc := optionalAmount(service)
	if pay == nil && svc == nil {
		return nil
	}
	var total int64
	if pay != nil {
		total += *pay
	}
	if svc != nil {
		total += *svc
	}
	return &total
}

func spacemarketStatus(raw string) booking.Status {
	s := normalize.Fold(raw)
	switch {
	case strings.Contains(s, "キャンセル"), strings.Contains(s, "取消"):
		return booking.StatusCancelled
	case strings.Contains(s, "成約"), strings.Contains(s, "確定"), strings.Contains(s, "完了"):
		return booking.StatusConfirmed
	default:
		return booking.StatusPending
	}
}
