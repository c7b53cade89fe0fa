package sources

import (
	"strings"
	"testing"

	booking "spaceledger/internal/booking/domain"
)

const spacemarketHeader = "予約ID,掲載タイトル,予約日,利用開始日,利用終了日,開始時刻,終了時刻,利用時間,ゲスト名,人数,利用目的,予約ステータス,スペース料金,オプション料金,合計金額,決済手数料,サービス手数料,振込金額,予約経路"

func TestSpacemarketParse(t *testing.T) {
	content := strings.Join([]string{
		spacemarketHeader,
		`12345,【北新宿スペース】採光抜群のレンタル撮影スタジオ,2024/5/20,2024/6/1,2024/6/1,13:00,17:00,4時間,鈴木一郎,8,撮影,成約,"20,000","2,000","22,000",660,"1,540","19,800",アプリ`,
		`ABC123,手入力の調整行,,,,,,,,,,成約,,,1000,,,,`,
		`67890,高田馬場の貸し会議室・セミナールーム,2024/5/21,2024/6/2,2024/6/2,10:00,12:00,2時間,田中,4,会議,キャンセル,0,0,0,0,0,0,ウェブ`,
	}, "\n")

	p := NewSpacemarketParser(nil)
	res, err := p.Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := len(res.Bookings); got != 2 {
		t.Fatalf("expected 2 bookings, got %d", got)
	}
	if got := len(res.Errors); got != 0 {
		t.Fatalf("expected non-digit id to be skipped silently, got errors %v", res.Errors)
	}

	b := res.Bookings[0]
	if b.ExternalID != "12345" {
		t.Errorf("external id = %q", b.ExternalID)
	}
	if b.DisplayName != "北新宿スペース" {
		t.Errorf("display name = %q", b.DisplayName)
	}
	if b.UsageDate != "2024-06-01" || b.BookingDate != "2024-05-20" {
		t.Errorf("dates = %q / %q", b.UsageDate, b.BookingDate)
	}
	if b.DurationMin != 240 {
		t.Errorf("duration = %d", b.DurationMin)
	}
	if b.GrossAmount != 22000 {
		t.Errorf("gross = %d", b.GrossAmount)
	}
	if b.Commission == nil || *b.Commission != 2200 {
		t.Errorf("commission = %v, want sum of both fee columns", b.Commission)
	}
	if b.NetAmount == nil || *b.NetAmount != 19800 {
		t.Errorf("net = %v", b.NetAmount)
	}
	if b.SubSpaceLabel != "" {
		t.Errorf("sub-space label = %q, want empty", b.SubSpaceLabel)
	}

	if res.Bookings[1].Status != booking.StatusCancelled {
		t.Errorf("status = %q", res.Bookings[1].Status)
	}
}

func TestSpacemarketAmountDivergenceWarning(t *testing.T) {
	content := strings.Join([]string{
		spacemarketHeader,
		`99999,【北新宿スペース】スタジオ,2024/5/1,2024/6/1,2024/6/1,10:00,11:00,1時間,佐藤,2,撮影,成約,"10,000",0,"10,000",500,500,"8,000",ウェブ`,
	}, "\n")

	res, err := NewSpacemarketParser(nil).Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "does not reconcile") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected divergence warning, got %v", res.Warnings)
	}
}

func TestSpacemarketListingName(t *testing.T) {
	rules := append([]LocationRule{{Contains: "代々木", Name: "代々木アネックス"}}, spacemarketDefaultLocations...)
	cases := []struct {
		title string
		want  string
	}{
		{"【北新宿スペース】採光抜群のレンタル撮影スタジオ", "北新宿スペース"},
		{"高田馬場の貸し会議室・セミナールーム", "高田馬場スペース"},
		{"代々木駅前・パーティールーム", "代々木アネックス"},
		{"短いタイトル", "短いタイトル"},
		{"どのルールにも当たらないとても長い掲載タイトルですので切り詰められます", "どのルールにも当たらないとても長い掲載タ"},
	}
	for _, tc := range cases {
		if got := spacemarketListingName(tc.title, rules); got != tc.want {
			t.Errorf("spacemarketListingName(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSpacemarketSkipsNonDigitIDs(t *testing.T) {
	for _, id := range []string{"", "ABC123", "12-34", "予約"} {
		if spacemarketDigitsRe.MatchString(id) {
			t.Errorf("id %q should not validate", id)
		}
	}
	if !spacemarketDigitsRe.MatchString("0012345") {
		t.Error("digit id should validate")
	}
}
