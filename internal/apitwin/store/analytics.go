package store

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
)

const (
	defaultAnalyticsWindow = 30 * 24 * time.Hour
	defaultRecentLimit     = 7
)

// Analytics agrega los emails del workspace en [start, end].
func (s *Store) Analytics(_ context.Context, userID, wsID string, p dto.AnalyticsParams) (dto.GetWorkspaceAnalyticsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return dto.GetWorkspaceAnalyticsResponse{}, err
	}

	end := s.clock()
	if p.EndDate != nil {
		end = p.EndDate.UTC()
	}
	start := end.Add(-defaultAnalyticsWindow)
	if p.StartDate != nil {
		start = p.StartDate.UTC()
	}
	gran := strings.ToLower(p.Granularity)
	if gran != "week" && gran != "month" {
		gran = "day"
	}
	recent := p.RecentLimit
	if recent <= 0 {
		recent = defaultRecentLimit
	}

	var emails []dto.EmailDetailsDto
	for _, e := range s.emails {
		if e.WorkspaceID == wsID && !e.CreatedAtUtc.Before(start) && !e.CreatedAtUtc.After(end) {
			emails = append(emails, *e)
		}
	}

	res := dto.GetWorkspaceAnalyticsResponse{
		WorkspaceID:   wsID,
		WorkspaceName: s.workspaces[wsID].Name,
		PeriodStart:   start,
		PeriodEnd:     end,
	}
	res.EmailMetrics = emailMetrics(emails)
	res.EngagementMetrics = engagement(emails)
	res.UserMetrics = s.userMetricsLocked(wsID)
	res.VolumeSeries = volumeSeries(emails, start, end, gran)
	res.RecentPerformance = recentPerformance(emails, end, recent)
	return res, nil
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func emailMetrics(emails []dto.EmailDetailsDto) dto.EmailMetrics {
	counts := map[dto.EmailStatus]int{}
	for _, e := range emails {
		counts[e.Status]++
	}
	m := dto.EmailMetrics{
		TotalEmails:     len(emails),
		SentEmails:      counts[dto.StatusSent],
		FailedEmails:    counts[dto.StatusFailed],
		QueuedEmails:    counts[dto.StatusQueued],
		SendingEmails:   counts[dto.StatusSending],
		CancelledEmails: counts[dto.StatusCancelled],
	}
	for _, st := range dto.EmailStatuses {
		m.StatusBreakdown = append(m.StatusBreakdown, dto.StatusCount{
			Status:     st,
			Count:      counts[st],
			Percentage: pct(counts[st], len(emails)),
		})
	}
	return m
}

func engagement(emails []dto.EmailDetailsDto) dto.EngagementMetrics {
	var sent, failed, attempts int
	uniq := map[string]struct{}{}
	for _, e := range emails {
		switch e.Status {
		case dto.StatusSent:
			sent++
		case dto.StatusFailed:
			failed++
		}
		attempts += e.AttemptCount
		for _, to := range e.ToEmail {
			uniq[strings.ToLower(to)] = struct{}{}
		}
	}
	out := dto.EngagementMetrics{
		DeliveryRate:     pct(sent, len(emails)),
		FailureRate:      pct(failed, len(emails)),
		UniqueRecipients: len(uniq),
	}
	if len(emails) > 0 {
		out.AverageAttempts = math.Round(float64(attempts)/float64(len(emails))*100) / 100
	}
	return out
}

func (s *Store) userMetricsLocked(wsID string) dto.UserMetrics {
	var um dto.UserMetrics
	for _, m := range s.activeMembersLocked(wsID) {
		um.TotalMembers++
		switch m.Role {
		case dto.RoleOwner:
			um.Owners++
		case dto.RoleAdmin:
			um.Admins++
		case dto.RoleMember:
			um.Members++
		case dto.RoleViewer:
			um.Viewers++
		}
	}
	for _, k := range s.apiKeys {
		if k.workspaceID == wsID && k.IsActive {
			um.ActiveApiKeys++
		}
	}
	return um
}

// bucketStart trunca t al inicio de su bucket (UTC; semanas empiezan lunes).
func bucketStart(t time.Time, gran string) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch gran {
	case "week":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(t time.Time, gran string) time.Time {
	switch gran {
	case "week":
		return t.AddDate(0, 0, 7)
	case "month":
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// volumeSeries devuelve un punto por bucket entre start y end, incluidos vacíos.
func volumeSeries(emails []dto.EmailDetailsDto, start, end time.Time, gran string) []dto.VolumeDataPoint {
	idx := map[time.Time]int{}
	var out []dto.VolumeDataPoint
	for b := bucketStart(start, gran); !b.After(end); b = nextBucket(b, gran) {
		idx[b] = len(out)
		out = append(out, dto.VolumeDataPoint{Date: b})
	}
	for _, e := range emails {
		i, ok := idx[bucketStart(e.CreatedAtUtc, gran)]
		if !ok {
			continue
		}
		p := &out[i]
		p.Total++
		switch e.Status {
		case dto.StatusSent:
			p.Sent++
		case dto.StatusFailed:
			p.Failed++
		case dto.StatusQueued, dto.StatusSending:
			p.Queued++
		}
	}
	return out
}

// recentPerformance resume los últimos n días hasta end, del más reciente al más viejo.
func recentPerformance(emails []dto.EmailDetailsDto, end time.Time, n int) []dto.PerformanceSummary {
	out := make([]dto.PerformanceSummary, 0, n)
	day := bucketStart(end, "day")
	byDay := map[time.Time][2]int{} // [sent, total]
	for _, e := range emails {
		d := bucketStart(e.CreatedAtUtc, "day")
		v := byDay[d]
		v[1]++
		if e.Status == dto.StatusSent {
			v[0]++
		}
		byDay[d] = v
	}
	for i := 0; i < n; i++ {
		d := day.AddDate(0, 0, -i)
		v := byDay[d]
		out = append(out, dto.PerformanceSummary{
			Period:      d.Format("2006-01-02"),
			EmailsSent:  v[0],
			EmailsTotal: v[1],
			SuccessRate: pct(v[0], v[1]),
		})
	}
	return out
}
