package sources

import (
	"strings"
	"testing"

	booking "spaceledger/internal/booking/domain"
)

const instabaseHeader = "予約番号,予約日時,利用日,開始時間,終了時間,利用時間(分),スペース名,プラン名,予約者名,法人名,利用人数,利用目的,利用目的詳細,ステータス,利用料金,手数料,振込金額,メモ"

func TestInstabaseParse(t *testing.T) {
	content := strings.Join([]string{
		instabaseHeader,
		`RSV-001,2024/5/1 14:02,2024/6/3,9:00,10:30,90,北新宿スペース,4A会議室プラン,山田太郎,株式会社サンプル,6,会議,月次定例,承認済み,"¥7,833",783,"7,050",`,
		`,,,,,,,,,,,,,合計,"¥7,833",,,`,
		`RSV-002,,2024/6/4,,,,北新宿スペース,,佐藤花子,,,,,キャンセル済み,0,,,`,
		`RSV-003,,6月3日,,,,北新宿スペース,,田中,,,,,承認済み,1000,,,`,
	}, "\n")

	p := NewInstabaseParser()
	res, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := len(res.Bookings); got != 2 {
		t.Fatalf("expected 2 bookings, got %d", got)
	}
	if got := len(res.Errors); got != 1 {
		t.Fatalf("expected 1 row error, got %d: %v", got, res.Errors)
	}

	b := res.Bookings[0]
	if b.ExternalID != "RSV-001" {
		t.Errorf("external id = %q", b.ExternalID)
	}
	if b.DisplayName != "北新宿スペース" {
		t.Errorf("display name = %q", b.DisplayName)
	}
	if b.SubSpaceLabel != "4A会議室プラン" {
		t.Errorf("sub-space label = %q", b.SubSpaceLabel)
	}
	if b.UsageDate != "2024-06-03" || b.BookingDate != "2024-05-01" {
		t.Errorf("dates = %q / %q", b.UsageDate, b.BookingDate)
	}
	if b.StartTime != "09:00" || b.EndTime != "10:30" || b.DurationMin != 90 {
		t.Errorf("times = %q-%q (%d min)", b.StartTime, b.EndTime, b.DurationMin)
	}
	if b.GrossAmount != 7833 {
		t.Errorf("gross = %d", b.GrossAmount)
	}
	if b.Commission == nil || *b.Commission != 783 {
		t.Errorf("commission = %v", b.Commission)
	}
	if b.NetAmount == nil || *b.NetAmount != 7050 {
		t.Errorf("net = %v", b.NetAmount)
	}
	if b.GuestName != "山田太郎（株式会社サンプル）" {
		t.Errorf("guest name = %q", b.GuestName)
	}
	if b.GuestCount != 6 {
		t.Errorf("guest count = %d", b.GuestCount)
	}
	if b.Status != booking.StatusConfirmed {
		t.Errorf("status = %q", b.Status)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("booking invalid: %v", err)
	}

	cancelled := res.Bookings[1]
	if cancelled.Status != booking.StatusCancelled {
		t.Errorf("cancelled status = %q", cancelled.Status)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Row == cancelled.Row && strings.Contains(w.Message, "cancelled booking with zero gross") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected zero-gross cancellation warning, got %v", res.Warnings)
	}
}

func TestInstabaseSkipsRowsWithoutReservationNumber(t *testing.T) {
	content := strings.Join([]string{
		instabaseHeader,
		`,,2024/6/3,,,,北新宿スペース,,名無し,,,,,承認済み,1000,,,`,
		`RSV-010,,2024/6/3,,,,,,名無し,,,,,承認済み,1000,,,`,
	}, "\n")

	res, err := NewInstabaseParser().Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Bookings) != 0 {
		t.Fatalf("expected no bookings, got %d", len(res.Bookings))
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected silent skips, got errors %v", res.Errors)
	}
}

func TestInstabaseRejectsForeignHeader(t *testing.T) {
	content := "予約ID,掲載タイトル,金額\n1,テスト,1000"
	if _, err := NewInstabaseParser().Parse(content); err == nil {
		t.Fatal("expected structural error for foreign header")
	}
}

func TestInstabaseStatusMapping(t *testing.T) {
	cases := []struct {
		raw  string
		want booking.Status
	}{
		{"承認済み", booking.StatusConfirmed},
		{"確定", booking.StatusConfirmed},
		{"利用済み", booking.StatusConfirmed},
		{"キャンセル済み", booking.StatusCancelled},
		{"承認後キャンセル", booking.StatusCancelled},
		{"取消", booking.StatusCancelled},
		{"承認待ち", booking.StatusPending},
		{"", booking.StatusPending},
	}
	for _, tc := range cases {
		if got := instabaseStatus(tc.raw); got != tc.want {
			t.Errorf("instabaseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestInstabaseGuestName(t *testing.T) {
	cases := []struct {
		person, org, want string
	}{
		{"山田太郎", "株式会社サンプル", "山田太郎（株式会社サンプル）"},
		{"山田太郎", "", "山田太郎"},
		{"", "株式会社サンプル", "株式会社サンプル"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := instabaseGuestName(tc.person, tc.org); got != tc.want {
			t.Errorf("instabaseGuestName(%q, %q) = %q, want %q", tc.person, tc.org, got, tc.want)
		}
	}
}
