package gameservice

import (
	"bytes"
	"context"
	"fmt"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("1e1f22")
	chartBar        = drawing.ColorFromHex("f0b232")
	chartText       = drawing.ColorFromHex("dbdee1")
)

// LeaderboardChart renders the leaderboard as a PNG bar chart.
func (s *GameService) LeaderboardChart(ctx context.Context, scopeID string, windowDays, limit int) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "LeaderboardChart", scopeID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		board, err := s.leaderboardLogic(ctx, scopeID, windowDays, limit)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		if board.IsFailure() {
			return results.FailureResult[[]byte, error](*board.Failure), nil
		}

		title := fmt.Sprintf("Wins, last %d days", windowDays)
		if windowDays == 0 {
			title = "Wins, all time"
		}
		png, err := renderLeaderboardChart(title, *board.Success)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	}))
}

func renderLeaderboardChart(title string, counts []gamedomain.WinCount) ([]byte, error) {
	if len(counts) == 0 {
		return renderNoDataPlaceholder("No wins recorded yet")
	}

	const (
		barWidth   = 48
		barSpacing = 24
	)

	bars := make([]chart.Value, len(counts))
	maxWins := 0
	for i, c := range counts {
		label := c.DisplayName
		if label == "" {
			label = c.ParticipantID
		}
		bars[i] = chart.Value{
			Label: label,
			Value: float64(c.Wins),
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		}
		maxWins = max(maxWins, c.Wins)
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      max(800, len(bars)*(barWidth+barSpacing)+120),
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxWins + 1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws msg centred on a blank canvas.
func renderNoDataPlaceholder(msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(chartBackground)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(chartText)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
