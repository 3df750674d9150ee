package event

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockRadar/internal/model"
)

// categoryRule binds one event category to its keyword list and weight.
// Categories are scanned in order; the first keyword hit wins for a given
// announcement or news item.
type categoryRule struct {
	category model.EventCategory
	keywords []string
	weight   float64
}

// keywordTable is static configuration, loaded once and never mutated.
var keywordTable = []categoryRule{
	{model.EventEarnings, []string{
		"业绩预告", "业绩快报", "年报", "季报", "半年报",
		"扭亏为盈", "业绩大增", "业绩大幅", "净利润增长", "营收增长",
		"业绩爆雷", "亏损", "业绩下滑", "商誉减值",
	}, 1.0},
	{model.EventMerger, []string{
		"收购", "并购", "重组", "重大资产重组", "借壳",
		"注入资产", "股权转让", "控制权变更", "要约收购",
	}, 1.5},
	{model.EventEquityChange, []string{
		"增持", "减持", "股东变更", "实控人变更",
		"大股东", "举牌", "股权激励", "回购",
	}, 0.8},
	{model.EventMajorContract, []string{
		"重大合同", "中标", "大订单", "战略合作",
		"框架协议", "签约", "中标公告",
	}, 0.7},
	{model.EventTradingHalt, []string{
		"停牌", "复牌", "临时停牌", "紧急停牌",
		"筹划重大事项", "核查",
	}, 1.2},
	{model.EventRegulatory, []string{
		"处罚", "警示函", "问询函", "立案调查",
		"ST", "退市", "违规", "监管函",
	}, 1.0},
	{model.EventInnovation, []string{
		"技术突破", "新产品发布", "专利", "研发成功",
		"临床试验", "新药获批", "量产",
	}, 0.6},
	{model.EventPolicy, []string{
		"政策利好", "政策支持", "补贴", "牌照",
		"资质", "准入", "政策调整",
	}, 0.5},
}

// Anomaly thresholds for the latest price snapshot. Amplitude is carried
// in the table but not yet scanned.
const (
	priceChangeThreshold = 5.0
	volumeRatioThreshold = 2.0
	turnoverThreshold    = 5.0

	newsWeightDiscount = 0.7 // news is trusted less than filings

	announcementLookback = 3 * 24 * time.Hour
	newsLookback         = 24 * time.Hour

	assessmentCacheTTL = time.Hour
)

// weightSumThreshold and recordCountThreshold drive the major-event
// decision alongside the always-major categories.
const (
	weightSumThreshold   = 1.5
	recordCountThreshold = 3
)

type cachedAssessment struct {
	assessment model.EventAssessment
	at         time.Time
}

// Detector scores announcement, news and price-anomaly signals into a
// major-event verdict per instrument. Verdicts are cached for an hour;
// concurrent writers race last-write-wins with bounded staleness.
type Detector struct {
	log zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedAssessment

	now func() time.Time
}

// NewDetector creates an event detector.
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		log:   log.With().Str("component", "event").Logger(),
		cache: make(map[string]cachedAssessment),
		now:   time.Now,
	}
}

// Detect assesses one instrument from the given inputs. A fresh cached
// verdict short-circuits the scan. Malformed records are skipped, never
// fatal.
func (d *Detector) Detect(code string, anns []model.Announcement, news []model.NewsItem, snapshot *model.Quote) model.EventAssessment {
	d.mu.Lock()
	if c, ok := d.cache[code]; ok && d.now().Sub(c.at) < assessmentCacheTTL {
		d.mu.Unlock()
		return c.assessment
	}
	d.mu.Unlock()

	var records []model.EventRecord
	records = append(records, d.scanAnnouncements(anns)...)
	records = append(records, d.scanNews(news)...)
	records = append(records, d.scanSnapshot(snapshot)...)

	assessment := model.EventAssessment{
		HasMajorEvent: decide(records),
		Records:       records,
	}

	d.mu.Lock()
	d.cache[code] = cachedAssessment{assessment: assessment, at: d.now()}
	d.mu.Unlock()

	if assessment.HasMajorEvent {
		d.log.Info().Str("code", code).Int("records", len(records)).Msg("major event detected")
	}
	return assessment
}

// Cached returns the current cached assessment without scanning. The
// second return is false when nothing fresh is cached.
func (d *Detector) Cached(code string) (model.EventAssessment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cache[code]
	if !ok || d.now().Sub(c.at) >= assessmentCacheTTL {
		return model.EventAssessment{}, false
	}
	return c.assessment, true
}

// Sweep drops expired assessments so the cache stays bounded.
func (d *Detector) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for code, c := range d.cache {
		if d.now().Sub(c.at) >= assessmentCacheTTL {
			delete(d.cache, code)
			removed++
		}
	}
	return removed
}

func (d *Detector) scanAnnouncements(anns []model.Announcement) []model.EventRecord {
	var records []model.EventRecord
	cutoff := d.now().Add(-announcementLookback).Format("20060102")

	for _, ann := range anns {
		// Skip stale filings when the date is comparable.
		if len(ann.AnnDate) == 8 && ann.AnnDate < cutoff {
			continue
		}
		if rec, ok := matchKeyword(ann.Title); ok {
			rec.Source = model.SourceAnnouncement
			rec.Title = ann.Title
			rec.Date = ann.AnnDate
			records = append(records, rec)
		}
	}
	return records
}

func (d *Detector) scanNews(news []model.NewsItem) []model.EventRecord {
	var records []model.EventRecord
	cutoff := d.now().Add(-newsLookback)

	for _, item := range news {
		if len(item.DateTime) >= 10 {
			if ts, err := time.Parse("2006-01-02", item.DateTime[:10]); err == nil && ts.Before(cutoff.Truncate(24*time.Hour)) {
				continue
			}
			// Unparseable dates fall through; the item is still scanned.
		}
		if rec, ok := matchKeyword(item.Title); ok {
			rec.Source = model.SourceNews
			rec.Title = item.Title
			rec.Date = item.DateTime
			rec.Weight *= newsWeightDiscount
			records = append(records, rec)
		}
	}
	return records
}

func (d *Detector) scanSnapshot(q *model.Quote) []model.EventRecord {
	if q == nil {
		return nil
	}
	var records []model.EventRecord
	today := d.now().Format("2006-01-02")

	if chg := math.Abs(q.PctChange); chg > priceChangeThreshold {
		direction := "涨"
		if q.PctChange < 0 {
			direction = "跌"
		}
		records = append(records, model.EventRecord{
			Category: model.EventPriceAnomaly,
			Keyword:  fmt.Sprintf("涨跌幅%.1f%%", chg),
			Source:   model.SourceMarket,
			Title:    fmt.Sprintf("股价异动：%s%.1f%%", direction, chg),
			Date:     today,
			Weight:   1.0,
		})
	}
	if q.VolumeRatio > volumeRatioThreshold {
		records = append(records, model.EventRecord{
			Category: model.EventVolumeAnomaly,
			Keyword:  fmt.Sprintf("量比%.1f", q.VolumeRatio),
			Source:   model.SourceMarket,
			Title:    fmt.Sprintf("成交异常：量比达%.1f倍", q.VolumeRatio),
			Date:     today,
			Weight:   0.8,
		})
	}
	if q.TurnoverRate > turnoverThreshold {
		records = append(records, model.EventRecord{
			Category: model.EventTurnoverAnomaly,
			Keyword:  fmt.Sprintf("换手率%.1f%%", q.TurnoverRate),
			Source:   model.SourceMarket,
			Title:    fmt.Sprintf("换手异常：换手率%.1f%%", q.TurnoverRate),
			Date:     today,
			Weight:   0.7,
		})
	}
	return records
}

// matchKeyword scans categories in table order and returns a record for
// the first keyword contained in the title; at most one match per title.
func matchKeyword(title string) (model.EventRecord, bool) {
	for _, rule := range keywordTable {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return model.EventRecord{
					Category: rule.category,
					Keyword:  kw,
					Weight:   rule.weight,
				}, true
			}
		}
	}
	return model.EventRecord{}, false
}

// decide applies the major-event rules: an always-major category, a
// weight sum of 1.5, or three records of any kind.
func decide(records []model.EventRecord) bool {
	if len(records) == 0 {
		return false
	}
	var total float64
	for _, r := range records {
		if r.Category == model.EventMerger || r.Category == model.EventTradingHalt {
			return true
		}
		total += r.Weight
	}
	if total >= weightSumThreshold {
		return true
	}
	return len(records) >= recordCountThreshold
}

// Summary renders the top three distinct-category records by weight, for
// display only.
func Summary(records []model.EventRecord) string {
	if len(records) == 0 {
		return "无重大事件"
	}

	sorted := make([]model.EventRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })

	var parts []string
	seen := make(map[model.EventCategory]bool)
	for _, r := range sorted {
		if seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		parts = append(parts, r.Keyword)
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, "、")
}
