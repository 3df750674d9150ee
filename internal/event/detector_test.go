package event

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"StockRadar/internal/model"
)

func newTestDetector() *Detector {
	return NewDetector(zerolog.Nop())
}

func today() string    { return time.Now().Format("20060102") }
func nowStamp() string { return time.Now().Format("2006-01-02 15:04:05") }

func TestDetect_MergerAloneIsMajor(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("600519.SH", []model.Announcement{
		{Title: "关于重大资产重组的进展公告", AnnDate: today()},
	}, nil, nil)

	assert.True(t, got.HasMajorEvent)
	assert.Len(t, got.Records, 1)
	assert.Equal(t, model.EventMerger, got.Records[0].Category)
	assert.Equal(t, model.SourceAnnouncement, got.Records[0].Source)
}

func TestDetect_TradingHaltAloneIsMajor(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("000001.SZ", []model.Announcement{
		{Title: "股票临时停牌公告", AnnDate: today()},
	}, nil, nil)
	assert.True(t, got.HasMajorEvent)
}

func TestDetect_SingleEarningsIsNotMajor(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("600000.SH", []model.Announcement{
		{Title: "2025年度业绩预告", AnnDate: today()},
	}, nil, nil)

	assert.False(t, got.HasMajorEvent, "one weight-1.0 record is below every threshold")
	assert.Len(t, got.Records, 1)
	assert.InDelta(t, 1.0, got.Records[0].Weight, 1e-9)
}

func TestDetect_CountRule(t *testing.T) {
	// Three news items, each policy-weight 0.5*0.7=0.35, sum 1.05 < 1.5,
	// but the count rule fires at three records.
	three := []model.NewsItem{
		{Title: "公司获政策支持", DateTime: nowStamp()},
		{Title: "行业补贴落地", DateTime: nowStamp()},
		{Title: "新牌照获批在即", DateTime: nowStamp()},
	}
	d := newTestDetector()
	assert.True(t, d.Detect("300001.SZ", nil, three, nil).HasMajorEvent)

	d2 := newTestDetector()
	assert.False(t, d2.Detect("300002.SZ", nil, three[:2], nil).HasMajorEvent)
}

func TestDetect_WeightSumRule(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("002594.SZ", []model.Announcement{
		{Title: "重大合同中标公告", AnnDate: today()},     // 0.7
		{Title: "股东增持计划公告", AnnDate: today()},     // 0.8
	}, nil, nil)
	assert.True(t, got.HasMajorEvent, "0.7+0.8 reaches the 1.5 weight threshold")
}

func TestDetect_NoInputsNoEvent(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("600000.SH", nil, nil, nil)
	assert.False(t, got.HasMajorEvent)
	assert.Empty(t, got.Records)
}

func TestDetect_OneMatchPerAnnouncement(t *testing.T) {
	// Title hits both earnings ("年报") and equity ("回购") keywords;
	// table order means earnings wins, once.
	d := newTestDetector()
	got := d.Detect("600036.SH", []model.Announcement{
		{Title: "年报披露暨回购进展", AnnDate: today()},
	}, nil, nil)

	assert.Len(t, got.Records, 1)
	assert.Equal(t, model.EventEarnings, got.Records[0].Category)
}

func TestDetect_StaleAnnouncementSkipped(t *testing.T) {
	old := time.Now().AddDate(0, 0, -10).Format("20060102")
	d := newTestDetector()
	got := d.Detect("600000.SH", []model.Announcement{
		{Title: "重大资产重组公告", AnnDate: old},
	}, nil, nil)
	assert.False(t, got.HasMajorEvent)
	assert.Empty(t, got.Records)
}

func TestDetect_StaleNewsSkippedMalformedKept(t *testing.T) {
	stale := time.Now().AddDate(0, 0, -3).Format("2006-01-02 09:00:00")
	d := newTestDetector()
	got := d.Detect("600000.SH", nil, []model.NewsItem{
		{Title: "公司筹划收购事项", DateTime: stale},
		{Title: "传闻：公司筹划收购", DateTime: "not-a-date-but-long"},
	}, nil)

	// The stale item is dropped; the malformed date is scanned anyway.
	assert.Len(t, got.Records, 1)
	assert.InDelta(t, 1.5*0.7, got.Records[0].Weight, 1e-9)
}

func TestDetect_NewsWeightDiscount(t *testing.T) {
	d := newTestDetector()
	got := d.Detect("600000.SH", nil, []model.NewsItem{
		{Title: "业绩大增预期升温", DateTime: nowStamp()},
	}, nil)
	assert.Len(t, got.Records, 1)
	assert.InDelta(t, 0.7, got.Records[0].Weight, 1e-9)
	assert.Equal(t, model.SourceNews, got.Records[0].Source)
}

func TestDetect_PriceAnomalies(t *testing.T) {
	tests := []struct {
		name  string
		quote model.Quote
		want  []model.EventCategory
	}{
		{"calm", model.Quote{PctChange: 1.2, VolumeRatio: 1.1, TurnoverRate: 2}, nil},
		{"price spike", model.Quote{PctChange: -6.3}, []model.EventCategory{model.EventPriceAnomaly}},
		{"volume surge", model.Quote{VolumeRatio: 2.5}, []model.EventCategory{model.EventVolumeAnomaly}},
		{"turnover churn", model.Quote{TurnoverRate: 6.1}, []model.EventCategory{model.EventTurnoverAnomaly}},
		{"all at once", model.Quote{PctChange: 9.9, VolumeRatio: 3, TurnoverRate: 12}, []model.EventCategory{
			model.EventPriceAnomaly, model.EventVolumeAnomaly, model.EventTurnoverAnomaly,
		}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector()
			got := d.Detect(fmt.Sprintf("60000%d.SH", i), nil, nil, &tt.quote)
			var cats []model.EventCategory
			for _, r := range got.Records {
				cats = append(cats, r.Category)
			}
			assert.Equal(t, tt.want, cats)
		})
	}
}

func TestDetect_ResultIsCachedForAnHour(t *testing.T) {
	d := newTestDetector()
	first := d.Detect("600519.SH", []model.Announcement{
		{Title: "重大资产重组公告", AnnDate: today()},
	}, nil, nil)
	assert.True(t, first.HasMajorEvent)

	// Same instrument, contradictory inputs: the cached verdict wins.
	second := d.Detect("600519.SH", nil, nil, nil)
	assert.True(t, second.HasMajorEvent)

	// Once expired the new inputs are scanned.
	d.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	third := d.Detect("600519.SH", nil, nil, nil)
	assert.False(t, third.HasMajorEvent)
}

func TestCachedAndSweep(t *testing.T) {
	d := newTestDetector()
	_, ok := d.Cached("600000.SH")
	assert.False(t, ok)

	d.Detect("600000.SH", nil, nil, &model.Quote{PctChange: 7})
	got, ok := d.Cached("600000.SH")
	assert.True(t, ok)
	assert.Len(t, got.Records, 1)

	d.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, d.Sweep())
	_, ok = d.Cached("600000.SH")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	records := []model.EventRecord{
		{Category: model.EventPolicy, Keyword: "补贴", Weight: 0.5},
		{Category: model.EventMerger, Keyword: "收购", Weight: 1.5},
		{Category: model.EventMerger, Keyword: "并购", Weight: 1.5},
		{Category: model.EventTradingHalt, Keyword: "停牌", Weight: 1.2},
		{Category: model.EventEarnings, Keyword: "年报", Weight: 1.0},
	}
	// Top three distinct categories by weight, duplicates collapsed.
	assert.Equal(t, "收购、停牌、年报", Summary(records))
	assert.Equal(t, "无重大事件", Summary(nil))
}
