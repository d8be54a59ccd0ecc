package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/metrics"
	"agrimaint/internal/ports"
	"agrimaint/internal/sensorspec"
)

const numChannels = 5

const (
	fillWindow      = 5
	medianWindow    = 5
	iqrFenceFactor  = 1.5
	zScoreThreshold = 3.0
	nearDupWindow   = time.Second
	nearDupEpsilon  = 1e-6
	staleGap        = 2 * time.Hour
)

var sentinelValues = map[string]struct{}{
	"error": {}, "err": {}, "n/a": {}, "na": {}, "nan": {}, "null": {}, "none": {}, "-999": {},
}

// unitSuffixPattern matches a leading number followed by a unit tail,
// e.g. "85.2 C", "240psi", "12.5 L/h".
var unitSuffixPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*[A-Za-z°/%][A-Za-z°/%\d.\s]*$`)

type CleanWindowInput struct {
	Since time.Time
	Until time.Time
	RunID string
}

// CleanReport counts what each cleaning step handled.
type CleanReport struct {
	RowsIn               int     `json:"rows_in"`
	RowsKept             int     `json:"rows_kept"`
	SentinelsReplaced    int     `json:"sentinels_replaced"`
	UnitsStripped        int     `json:"units_stripped"`
	Unparseable          int     `json:"unparseable"`
	BadTimestampsDropped int     `json:"bad_timestamps_dropped"`
	MissingFilled        int     `json:"missing_filled"`
	OutliersReplaced     int     `json:"outliers_replaced"`
	DuplicatesDropped    int     `json:"duplicates_dropped"`
	RangeClipped         int     `json:"range_clipped"`
	DriftCorrected       int     `json:"drift_corrected"`
	InconsistentRows     int     `json:"inconsistent_rows"`
	MeanQuality          float64 `json:"mean_quality"`
}

func (r CleanReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows in:              %d\n", r.RowsIn)
	fmt.Fprintf(&b, "rows kept:            %d\n", r.RowsKept)
	fmt.Fprintf(&b, "sentinels replaced:   %d\n", r.SentinelsReplaced)
	fmt.Fprintf(&b, "units stripped:       %d\n", r.UnitsStripped)
	fmt.Fprintf(&b, "unparseable values:   %d\n", r.Unparseable)
	fmt.Fprintf(&b, "bad timestamps:       %d\n", r.BadTimestampsDropped)
	fmt.Fprintf(&b, "missing filled:       %d\n", r.MissingFilled)
	fmt.Fprintf(&b, "outliers replaced:    %d\n", r.OutliersReplaced)
	fmt.Fprintf(&b, "duplicates dropped:   %d\n", r.DuplicatesDropped)
	fmt.Fprintf(&b, "range clipped:        %d\n", r.RangeClipped)
	fmt.Fprintf(&b, "drift corrected:      %d\n", r.DriftCorrected)
	fmt.Fprintf(&b, "inconsistent rows:    %d\n", r.InconsistentRows)
	fmt.Fprintf(&b, "mean quality score:   %.1f\n", r.MeanQuality)
	return b.String()
}

type seriesRow struct {
	recordedAt   time.Time
	values       [numChannels]float64
	present      [numChannels]bool
	filled       [numChannels]bool
	outlier      [numChannels]bool
	clipped      [numChannels]bool
	inconsistent bool
	hadDuplicate bool
	stale        bool
}

// CleanWindow runs the fixed cleaning sequence over raw readings in
// [Since, Until) and upserts the results. It is idempotent on already-clean
// data: re-running over cleaner output introduces no new changes.
func (s *Service) CleanWindow(ctx context.Context, in CleanWindowInput) (CleanReport, error) {
	if ctx == nil {
		return CleanReport{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CleanReport{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return CleanReport{}, errors.New("fleet repository is required")
	}
	if strings.TrimSpace(in.RunID) == "" {
		return CleanReport{}, errors.New("run id is required")
	}
	if in.Until.IsZero() {
		in.Until = s.now()
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.cleaner"), slog.String("run_id", in.RunID))

	window := ports.ReadingWindow{Until: formatTime(in.Until)}
	if !in.Since.IsZero() {
		window.Since = formatTime(in.Since)
	}
	raw, err := s.repo.ListRawReadings(ctx, 0, window)
	if err != nil {
		return CleanReport{}, errs.Wrap(err, "list raw readings")
	}

	report := CleanReport{RowsIn: len(raw)}

	byEquipment := make(map[uint64][]ports.RawReading)
	order := make([]uint64, 0)
	for _, reading := range raw {
		if _, ok := byEquipment[reading.EquipmentID]; !ok {
			order = append(order, reading.EquipmentID)
		}
		byEquipment[reading.EquipmentID] = append(byEquipment[reading.EquipmentID], reading)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	clean := make([]ports.CleanReading, 0, len(raw))
	qualityTotal := 0.0

	for _, equipmentID := range order {
		rows := s.parseSeries(byEquipment[equipmentID], in.Until, &report)
		rows = dropDuplicates(rows, &report)
		s.fillMissing(rows, &report)
		s.replaceOutliers(rows, &report)
		s.clipRanges(rows, &report)
		s.dampenDrift(rows, &report)
		flagInconsistencies(rows, &report)
		markStaleness(rows)

		for _, row := range rows {
			score, flag := qualityScore(row)
			qualityTotal += score
			clean = append(clean, ports.CleanReading{
				EquipmentID:  equipmentID,
				RecordedAt:   formatTime(row.recordedAt),
				EngineTemp:   row.values[0],
				OilPressure:  row.values[1],
				Vibration:    row.values[2],
				RPM:          row.values[3],
				FuelRate:     row.values[4],
				QualityScore: score,
				QualityFlag:  flag,
				RunID:        in.RunID,
			})
		}
	}

	report.RowsKept = len(clean)
	if len(clean) > 0 {
		report.MeanQuality = qualityTotal / float64(len(clean))
	}

	if err := s.repo.UpsertCleanReadings(ctx, clean); err != nil {
		return CleanReport{}, errs.Wrap(err, "upsert clean readings")
	}

	metrics.RowsCleaned.Add(float64(report.RowsKept))
	metrics.CleaningIssues.WithLabelValues("sentinel").Add(float64(report.SentinelsReplaced))
	metrics.CleaningIssues.WithLabelValues("outlier").Add(float64(report.OutliersReplaced))
	metrics.CleaningIssues.WithLabelValues("duplicate").Add(float64(report.DuplicatesDropped))
	metrics.CleaningIssues.WithLabelValues("missing").Add(float64(report.MissingFilled))

	logging.Info(logCtx, "cleaning finished",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_kept", report.RowsKept),
		slog.Int("outliers_replaced", report.OutliersReplaced),
	)
	return report, nil
}

// parseSeries applies the string-level steps: sentinel replacement, unit
// stripping, numeric coercion and timestamp repair.
func (s *Service) parseSeries(readings []ports.RawReading, until time.Time, report *CleanReport) []*seriesRow {
	rows := make([]*seriesRow, 0, len(readings))

	for _, reading := range readings {
		recordedAt, err := parseTime(reading.RecordedAt)
		if err != nil || recordedAt.After(until) {
			report.BadTimestampsDropped++
			continue
		}

		row := &seriesRow{recordedAt: recordedAt}
		rawValues := [numChannels]string{reading.EngineTemp, reading.OilPressure, reading.Vibration, reading.RPM, reading.FuelRate}
		for i, rawValue := range rawValues {
			value, present := s.coerceValue(rawValue, report)
			row.values[i] = value
			row.present[i] = present
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].recordedAt.Before(rows[j].recordedAt) })
	return rows
}

func (s *Service) coerceValue(raw string, report *CleanReport) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	if _, isSentinel := sentinelValues[strings.ToLower(trimmed)]; isSentinel {
		report.SentinelsReplaced++
		return 0, false
	}

	if match := unitSuffixPattern.FindStringSubmatch(trimmed); match != nil {
		trimmed = match[1]
		report.UnitsStripped++
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		report.Unparseable++
		return 0, false
	}
	return value, true
}

func dropDuplicates(rows []*seriesRow, report *CleanReport) []*seriesRow {
	kept := make([]*seriesRow, 0, len(rows))
	for _, row := range rows {
		if len(kept) == 0 {
			kept = append(kept, row)
			continue
		}

		prev := kept[len(kept)-1]
		if row.recordedAt.Equal(prev.recordedAt) {
			report.DuplicatesDropped++
			prev.hadDuplicate = true
			continue
		}
		if row.recordedAt.Sub(prev.recordedAt) <= nearDupWindow && sameValues(row, prev) {
			report.DuplicatesDropped++
			prev.hadDuplicate = true
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func sameValues(a, b *seriesRow) bool {
	for i := 0; i < numChannels; i++ {
		if a.present[i] != b.present[i] {
			return false
		}
		if a.present[i] && math.Abs(a.values[i]-b.values[i]) > nearDupEpsilon {
			return false
		}
	}
	return true
}

// fillMissing repairs gaps per channel: forward-fill, back-fill, linear
// interpolation, then rolling-mean fill; a fully missing channel falls back
// to the physical midpoint.
func (s *Service) fillMissing(rows []*seriesRow, report *CleanReport) {
	for c := 0; c < numChannels; c++ {
		// Forward fill.
		lastKnown, haveLast := 0.0, false
		for _, row := range rows {
			if row.present[c] {
				lastKnown, haveLast = row.values[c], true
				continue
			}
			if haveLast {
				row.values[c] = lastKnown
				row.present[c] = true
				row.filled[c] = true
				report.MissingFilled++
			}
		}

		// Back fill leading gaps.
		nextKnown, haveNext := 0.0, false
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].present[c] {
				nextKnown, haveNext = rows[i].values[c], true
				continue
			}
			if haveNext {
				rows[i].values[c] = nextKnown
				rows[i].present[c] = true
				rows[i].filled[c] = true
				report.MissingFilled++
			}
		}

		// Linear interpolation between the nearest known neighbors.
		for i, row := range rows {
			if row.present[c] {
				continue
			}
			before, after := -1, -1
			for j := i - 1; j >= 0; j-- {
				if rows[j].present[c] {
					before = j
					break
				}
			}
			for j := i + 1; j < len(rows); j++ {
				if rows[j].present[c] {
					after = j
					break
				}
			}
			if before >= 0 && after >= 0 {
				span := rows[after].recordedAt.Sub(rows[before].recordedAt).Seconds()
				frac := 0.5
				if span > 0 {
					frac = row.recordedAt.Sub(rows[before].recordedAt).Seconds() / span
				}
				row.values[c] = rows[before].values[c] + frac*(rows[after].values[c]-rows[before].values[c])
				row.present[c] = true
				row.filled[c] = true
				report.MissingFilled++
			}
		}

		// Rolling-mean fill for whatever survived the passes above.
		for i, row := range rows {
			if row.present[c] {
				continue
			}
			sum, count := 0.0, 0
			for j := maxInt(0, i-fillWindow); j < minInt(len(rows), i+fillWindow+1); j++ {
				if rows[j].present[c] {
					sum += rows[j].values[c]
					count++
				}
			}
			if count > 0 {
				row.values[c] = sum / float64(count)
			} else {
				channel := s.channelSpec(c)
				row.values[c] = (channel.Min + channel.Max) / 2
			}
			row.present[c] = true
			row.filled[c] = true
			report.MissingFilled++
		}
	}
}

// replaceOutliers flags values sitting outside the IQR fences or beyond
// three standard deviations, then substitutes the rolling median. Either
// signal alone is enough: a cluster of spikes can inflate the stddev until
// no single spike clears the z threshold, but the fences still catch them.
func (s *Service) replaceOutliers(rows []*seriesRow, report *CleanReport) {
	if len(rows) < 4 {
		return
	}

	for c := 0; c < numChannels; c++ {
		column := make([]float64, len(rows))
		for i, row := range rows {
			column[i] = row.values[c]
		}

		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)
		q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
		iqr := q3 - q1
		lowFence := q1 - iqrFenceFactor*iqr
		highFence := q3 + iqrFenceFactor*iqr

		mean, std := stat.MeanStdDev(column, nil)
		hasSpread := !math.IsNaN(std) && std > 0

		for i, row := range rows {
			value := row.values[c]
			outsideFence := value < lowFence || value > highFence
			extremeZ := hasSpread && math.Abs(value-mean)/std > zScoreThreshold
			if outsideFence || extremeZ {
				row.values[c] = rollingMedian(column, i)
				row.outlier[c] = true
				report.OutliersReplaced++
			}
		}
	}
}

func rollingMedian(column []float64, idx int) float64 {
	lo := maxInt(0, idx-medianWindow)
	hi := minInt(len(column), idx+medianWindow+1)
	window := make([]float64, 0, hi-lo)
	for j := lo; j < hi; j++ {
		if j == idx {
			continue
		}
		window = append(window, column[j])
	}
	if len(window) == 0 {
		return column[idx]
	}
	sort.Float64s(window)
	return stat.Quantile(0.5, stat.Empirical, window, nil)
}

func (s *Service) clipRanges(rows []*seriesRow, report *CleanReport) {
	for c := 0; c < numChannels; c++ {
		channel := s.channelSpec(c)
		for _, row := range rows {
			if row.values[c] < channel.Min {
				row.values[c] = channel.Min
				row.clipped[c] = true
				report.RangeClipped++
			} else if row.values[c] > channel.Max {
				row.values[c] = channel.Max
				row.clipped[c] = true
				report.RangeClipped++
			}
		}
	}
}

// dampenDrift compares a rolling baseline against the series' opening
// baseline and subtracts the excess once it exceeds the channel tolerance.
func (s *Service) dampenDrift(rows []*seriesRow, report *CleanReport) {
	for c := 0; c < numChannels; c++ {
		channel := s.channelSpec(c)
		window := channel.DriftWindow
		if window <= 0 || len(rows) <= window*2 {
			continue
		}

		opening := 0.0
		for i := 0; i < window; i++ {
			opening += rows[i].values[c]
		}
		opening /= float64(window)

		for i := window; i < len(rows); i++ {
			baseline := 0.0
			for j := i - window; j < i; j++ {
				baseline += rows[j].values[c]
			}
			baseline /= float64(window)

			drift := baseline - opening
			if math.Abs(drift) > channel.DriftTolerance {
				rows[i].values[c] -= drift - math.Copysign(channel.DriftTolerance, drift)
				report.DriftCorrected++
			}
		}
	}
}

// flagInconsistencies applies the hand-coded cross-sensor physical checks.
func flagInconsistencies(rows []*seriesRow, report *CleanReport) {
	for _, row := range rows {
		engineTemp := row.values[0]
		oilPressure := row.values[1]
		rpm := row.values[3]
		fuelRate := row.values[4]

		switch {
		case rpm < 1 && fuelRate > 1:
			// Burning fuel with a stopped engine.
			row.inconsistent = true
		case rpm < 1 && oilPressure > 10:
			// Oil pressure without rotation.
			row.inconsistent = true
		case rpm < 1 && engineTemp > 90:
			// Running-hot reading on a stopped engine.
			row.inconsistent = true
		}
		if row.inconsistent {
			report.InconsistentRows++
		}
	}
}

func markStaleness(rows []*seriesRow) {
	for i := 1; i < len(rows); i++ {
		if rows[i].recordedAt.Sub(rows[i-1].recordedAt) > staleGap {
			rows[i].stale = true
		}
	}
}

// qualityScore combines five equal-weighted sub-checks into [0,100].
func qualityScore(row *seriesRow) (float64, string) {
	failed := make([]string, 0, 5)

	complete := true
	valid := true
	for c := 0; c < numChannels; c++ {
		if row.filled[c] {
			complete = false
		}
		if row.clipped[c] || row.outlier[c] {
			valid = false
		}
	}

	if !complete {
		failed = append(failed, "completeness")
	}
	if !valid {
		failed = append(failed, "validity")
	}
	if row.inconsistent {
		failed = append(failed, "consistency")
	}
	if row.stale {
		failed = append(failed, "timeliness")
	}
	if row.hadDuplicate {
		failed = append(failed, "uniqueness")
	}

	score := float64(5-len(failed)) * 20.0
	if len(failed) == 0 {
		return score, "ok"
	}
	return score, strings.Join(failed, ",")
}

func (s *Service) channelSpec(idx int) sensorspec.Channel {
	return s.spec.Sensors[sensorspec.ChannelNames[idx]]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
