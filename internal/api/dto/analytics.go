package dto

import "time"

// AnalyticsParams son los query params opcionales del endpoint de analytics.
type AnalyticsParams struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Granularity string // day | week | month
	RecentLimit int
}

type GetWorkspaceAnalyticsResponse struct {
	WorkspaceID       string               `json:"workspaceId"`
	WorkspaceName     string               `json:"workspaceName"`
	PeriodStart       time.Time            `json:"periodStart"`
	PeriodEnd         time.Time            `json:"periodEnd"`
	EmailMetrics      EmailMetrics         `json:"emailMetrics"`
	EngagementMetrics EngagementMetrics    `json:"engagementMetrics"`
	UserMetrics       UserMetrics          `json:"userMetrics"`
	VolumeSeries      []VolumeDataPoint    `json:"emailVolumeSeries"`
	RecentPerformance []PerformanceSummary `json:"recentPerformance"`
}

type EmailMetrics struct {
	TotalEmails     int           `json:"totalEmails"`
	SentEmails      int           `json:"sentEmails"`
	FailedEmails    int           `json:"failedEmails"`
	QueuedEmails    int           `json:"queuedEmails"`
	SendingEmails   int           `json:"sendingEmails"`
	CancelledEmails int           `json:"cancelledEmails"`
	StatusBreakdown []StatusCount `json:"statusBreakdown"`
}

type StatusCount struct {
	Status     EmailStatus `json:"status"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

type EngagementMetrics struct {
	DeliveryRate     float64 `json:"deliveryRate"`
	FailureRate      float64 `json:"failureRate"`
	AverageAttempts  float64 `json:"averageAttempts"`
	UniqueRecipients int     `json:"uniqueRecipients"`
}

type UserMetrics struct {
	TotalMembers  int `json:"totalMembers"`
	Owners        int `json:"owners"`
	Admins        int `json:"admins"`
	Members       int `json:"members"`
	Viewers       int `json:"viewers"`
	ActiveApiKeys int `json:"activeApiKeys"`
}

type VolumeDataPoint struct {
	Date   time.Time `json:"date"`
	Total  int       `json:"total"`
	Sent   int       `json:"sent"`
	Failed int       `json:"failed"`
	Queued int       `json:"queued"`
}

type PerformanceSummary struct {
	Period      string  `json:"period"`
	EmailsSent  int     `json:"emailsSent"`
	EmailsTotal int     `json:"emailsTotal"`
	SuccessRate float64 `json:"successRate"`
}
