// Package seeder generates sample marketplace exports for demos and
// load tests. Generated files parse cleanly through the corresponding
// source parser.
package seeder

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"spaceledger/internal/ingestion/sources"
)

// Options tune one generated file.
type Options struct {
	Source string
	Rows   int
	Seed   int64
	// Month places usage dates; any day inside the target month works.
	Month time.Time
	// Listings override the demo venue names records draw from.
	Listings []string
}

var demoListings = []string{"北新宿スペース", "西早稲田スペース", "高田馬場スペース", "駒込サロン"}

var demoGuests = []string{"田中太郎", "佐藤花子", "鈴木一郎", "高橋美咲", "伊藤健太", "渡辺直美"}

var demoCompanies = []string{"株式会社サンプル", "合同会社ミライ", "有限会社青空企画"}

var demoPurposes = []string{"会議", "セミナー", "撮影", "パーティー", "面接", "研修"}

// Generate builds one CSV export in the requested source's layout.
func Generate(opts Options) (string, error) {
	if opts.Rows <= 0 {
		opts.Rows = 50
	}
	if opts.Month.IsZero() {
		opts.Month = time.Now()
	}
	faker := gofakeit.New(opts.Seed)
	listings := opts.Listings
	if len(listings) == 0 {
		listings = demoListings
	}
	switch opts.Source {
	case sources.SourceInstabase:
		return generateInstabase(faker, opts, listings), nil
	case sources.SourceSpacemarket:
		return generateSpacemarket(faker, opts, listings), nil
	case sources.SourceSpacee:
		return generateSpacee(faker, opts, listings), nil
	case sources.SourceGeneric, "":
		return generateGeneric(faker, opts, listings), nil
	default:
		return "", fmt.Errorf("seeder: unknown source %q", opts.Source)
	}
}

type rowTiming struct {
	usage    time.Time
	booked   time.Time
	start    string
	end      string
	duration int
}

func nextTiming(faker *gofakeit.Faker, month time.Time) rowTiming {
	day := faker.Number(1, 28)
	usage := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
	hour := faker.Number(9, 18)
	duration := faker.Number(1, 4) * 60
	return rowTiming{
		usage:    usage,
		booked:   usage.AddDate(0, 0, -faker.Number(1, 21)),
		start:    fmt.Sprintf("%02d:00", hour),
		end:      fmt.Sprintf("%02d:00", hour+duration/60),
		duration: duration,
	}
}

func writeCSV(records [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, rec := range records {
		_ = w.Write(rec)
	}
	w.Flush()
	return sb.String()
}

func generateInstabase(faker *gofakeit.Faker, opts Options, listings []string) string {
	records := [][]string{{
		"予約番号", "予約日時", "利用日", "開始時間", "終了時間", "利用時間(分)",
		"スペース名", "プラン名", "予約者名", "法人名", "利用人数", "利用目的",
		"利用目的詳細", "ステータス", "利用料金", "手数料", "振込金額", "メモ",
	}}
	for i := 0; i < opts.Rows; i++ {
		t := nextTiming(faker, opts.Month)
		gross := faker.Number(10, 200) * 100
		commission := gross * 30 / 100
		status := "承認済"
		switch faker.Number(0, 9) {
		case 0:
			status = "承認後キャンセル"
		case 1:
			status = "承認待ち"
		}
		org := ""
		if faker.Bool() {
			org = faker.RandomString(demoCompanies)
		}
		records = append(records, []string{
			fmt.Sprintf("IB-%d", 600001+i),
			t.booked.Format("2006/1/2") + " " + fmt.Sprintf("%02d:%02d", faker.Number(8, 22), faker.Number(0, 59)),
			t.usage.Format("2006/1/2"),
			t.start,
			t.end,
			strconv.Itoa(t.duration),
			faker.RandomString(listings),
			faker.RandomString([]string{"スタンダード", "ロングパック", "ナイトパック"}),
			faker.RandomString(demoGuests),
			org,
			strconv.Itoa(faker.Number(1, 12)),
			faker.RandomString(demoPurposes),
			"",
			status,
			fmt.Sprintf("¥%d", gross),
			fmt.Sprintf("¥%d", commission),
			fmt.Sprintf("¥%d", gross-commission),
			"",
		})
	}
	return writeCSV(records)
}

func generateSpacemarket(faker *gofakeit.Faker, opts Options, listings []string) string {
	records := [][]string{{
		"予約ID", "予約日", "利用開始日", "開始時刻", "終了時刻", "掲載タイトル",
		"ゲスト名", "人数", "利用目的", "予約ステータス", "合計金額",
		"決済手数料", "サービス手数料", "振込金額", "支払方法", "メモ",
	}}
	for i := 0; i < opts.Rows; i++ {
		t := nextTiming(faker, opts.Month)
		gross := faker.Number(10, 200) * 100
		paymentFee := gross * 4 / 100
		serviceFee := gross * 26 / 100
		status := "成約"
		if faker.Number(0, 9) == 0 {
			status = "キャンセル"
		}
		listing := faker.RandomString(listings)
		title := "【" + listing + "】駅近の貸し会議室"
		if faker.Bool() {
			title = listing + " 多目的レンタルスペース"
		}
		records = append(records, []string{
			strconv.Itoa(4200001 + i),
			t.booked.Format("2006/01/02"),
			t.usage.Format("2006/01/02"),
			t.start,
			t.end,
			title,
			faker.RandomString(demoGuests),
			strconv.Itoa(faker.Number(1, 20)),
			faker.RandomString(demoPurposes),
			status,
			strconv.Itoa(gross),
			strconv.Itoa(paymentFee),
			strconv.Itoa(serviceFee),
			strconv.Itoa(gross - paymentFee - serviceFee),
			faker.RandomString([]string{"クレジットカード", "請求書払い"}),
			"",
		})
	}
	return writeCSV(records)
}

func generateSpacee(faker *gofakeit.Faker, opts Options, listings []string) string {
	records := [][]string{
		{"予約実績データ（管理画面よりダウンロード）"},
		{
			"予約番号", "予約成立日", "会場名", "会場名", "部屋名", "利用日",
			"開始時刻", "終了時刻", "利用時間", "予約者", "電話番号", "人数",
			"利用目的", "利用目的詳細", "ステータス", "利用料金", "手数料",
			"振込額", "支払方法", "備考",
		},
	}
	for i := 0; i < opts.Rows; i++ {
		t := nextTiming(faker, opts.Month)
		gross := faker.Number(10, 200) * 100
		commission := gross * 30 / 100
		status := "成約"
		if faker.Number(0, 9) == 0 {
			status = "取消"
		}
		listing := faker.RandomString(listings)
		records = append(records, []string{
			fmt.Sprintf("SP%06d", 310001+i),
			t.booked.Format("2006-01-02"),
			listing,
			listing + "｜駅チカ多目的スペース",
			"",
			t.usage.Format("2006-01-02"),
			t.start,
			t.end,
			strconv.Itoa(t.duration),
			faker.RandomString(demoGuests),
			fmt.Sprintf("090-%04d-%04d", faker.Number(1000, 9999), faker.Number(1000, 9999)),
			strconv.Itoa(faker.Number(1, 16)),
			faker.RandomString(demoPurposes),
			"",
			status,
			fmt.Sprintf("¥%d", gross),
			fmt.Sprintf("¥%d", commission),
			fmt.Sprintf("¥%d", gross-commission),
			faker.RandomString([]string{"クレジットカード", "銀行振込"}),
			"",
		})
	}
	return writeCSV(records)
}

func generateGeneric(faker *gofakeit.Faker, opts Options, listings []string) string {
	records := [][]string{{
		"予約番号", "スペース名", "利用日", "開始時間", "終了時間", "予約者名", "合計金額", "ステータス",
	}}
	for i := 0; i < opts.Rows; i++ {
		t := nextTiming(faker, opts.Month)
		status := "確定"
		switch faker.Number(0, 9) {
		case 0:
			status = "キャンセル"
		case 1:
			status = "保留"
		}
		records = append(records, []string{
			fmt.Sprintf("GEN-%05d", 10001+i),
			faker.RandomString(listings),
			t.usage.Format("2006-01-02"),
			t.start,
			t.end,
			faker.RandomString(demoGuests),
			strconv.Itoa(faker.Number(10, 200) * 100),
			status,
		})
	}
	return writeCSV(records)
}
