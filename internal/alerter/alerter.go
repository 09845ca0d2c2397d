package alerter

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"FlowScope/internal/config"
	"FlowScope/internal/model"
	"FlowScope/internal/session"
	"FlowScope/internal/stats"
)

// Alerter periodically evaluates threshold rules against the session's
// live statistics snapshot and sends a consolidated notification when any
// rule triggers.
type Alerter struct {
	session       *session.Session
	rules         []config.AlerterRule
	notifier      model.Notifier
	checkInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, sess *session.Session, notifier model.Notifier) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}

	return &Alerter{
		session:       sess,
		rules:         cfg.Rules,
		notifier:      notifier,
		checkInterval: interval,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start launches the periodic evaluation of alert rules. The waiter is
// registered before the goroutine so Stop cannot pass it early.
func (a *Alerter) Start() {
	log.Println("Alerter started")
	a.wg.Add(1)
	go a.run()
}

func (a *Alerter) run() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.evaluate()
		case <-a.stopChan:
			return
		}
	}
}

// Stop gracefully stops the evaluation loop, running one final check.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
	a.evaluate()
}

// evaluate checks every rule against the current snapshot and sends one
// consolidated notification for all triggered rules.
func (a *Alerter) evaluate() {
	snap := a.session.Stats()
	if snap == nil {
		return
	}

	var triggered []string
	for _, rule := range a.rules {
		value, unit, ok := metricValue(&snap.Summary, rule.Metric)
		if !ok {
			log.Printf("Warning: unknown metric '%s' in alerter rule '%s'", rule.Metric, rule.Name)
			continue
		}
		if !check(value, rule.Threshold, rule.Operator) {
			continue
		}
		msg := fmt.Sprintf("<h3>Alert: %s</h3>"+
			"<ul>"+
			"<li><b>Metric:</b> <code>%s</code></li>"+
			"<li><b>Condition:</b> <code>%s %.2f</code></li>"+
			"<li><b>Observed Value:</b> <code>%.0f %s</code></li>"+
			"</ul>",
			rule.Name, rule.Metric, rule.Operator, rule.Threshold, value, unit)
		triggered = append(triggered, msg)
	}

	if len(triggered) == 0 {
		return
	}
	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(triggered))

	body := "<h1>FlowScope Alert Summary</h1>" +
		"<p>The following alerts were triggered during the last check:</p><hr>" +
		strings.Join(triggered, "<hr>")

	if a.notifier != nil {
		subject := fmt.Sprintf("FlowScope Alert Summary (%d Triggered)", len(triggered))
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
		} else {
			log.Printf("INFO: Consolidated alert notification sent successfully.")
		}
	}
}

// metricValue resolves a rule metric name against the snapshot summary.
func metricValue(s *stats.Summary, metric string) (float64, string, bool) {
	switch metric {
	case "total_bytes":
		return float64(s.TotalBytes), "bytes", true
	case "total_packets":
		return float64(s.TotalPackets), "packets", true
	case "total_records":
		return float64(s.Records), "records", true
	case "rejected_connections":
		return float64(s.Rejected), "connections", true
	default:
		return 0, "", false
	}
}

// check compares a value against a threshold based on an operator.
func check(value, threshold float64, operator string) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		log.Printf("Warning: unknown operator '%s' in alerter rule", operator)
		return false
	}
}
