package handlers

import "digitalgeosciences.com/geo-web/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	GTMContainerID   string // e.g. GTM-XXXXXXX
	SegmentWriteKey  string // Segment browser key
	Debug            bool
}

// Enabled reports whether any client instrumentation is configured.
func (a Analytics) Enabled() bool {
	return a.GA4MeasurementID != "" || a.GTMContainerID != "" || a.SegmentWriteKey != ""
}

// AnalyticsFromConfig builds Analytics from the GEO_WEB_ANALYTICS_* settings.
func AnalyticsFromConfig(c config.Analytics) Analytics {
	return Analytics{
		GA4MeasurementID: c.GA4MeasurementID,
		GTMContainerID:   c.GTMContainerID,
		SegmentWriteKey:  c.SegmentWriteKey,
		Debug:            c.Debug,
	}
}
