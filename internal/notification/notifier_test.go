package notification

import (
	"reflect"
	"strings"
	"testing"

	"FlowScope/internal/config"
)

func TestSplitRecipients(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"ops@example.com", []string{"ops@example.com"}},
		{"a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{" a@example.com ,, b@example.com, ", []string{"a@example.com", "b@example.com"}},
		{"", nil},
		{" , ", nil},
	}
	for _, c := range cases {
		if got := splitRecipients(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitRecipients(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage(
		"flowscope@example.com",
		[]string{"a@example.com", "b@example.com"},
		"Alert Summary",
		"<h1>hello</h1>",
	))

	header, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatalf("Message has no header/body separator: %q", msg)
	}
	if body != "<h1>hello</h1>" {
		t.Errorf("Wrong body: %q", body)
	}
	for _, want := range []string{
		"From: flowscope@example.com",
		"To: a@example.com, b@example.com",
		"Subject: Alert Summary",
		"Content-Type: text/html; charset=UTF-8",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("Header missing %q:\n%s", want, header)
		}
	}
	for _, line := range strings.Split(header, "\r\n") {
		if strings.ContainsRune(line, '\n') {
			t.Errorf("Header line with bare newline: %q", line)
		}
	}
}

func TestSubjectPrefix(t *testing.T) {
	plain := NewEmailNotifier(config.SMTPConfig{}).(*EmailNotifier)
	if got := plain.subject("Alert"); got != "Alert" {
		t.Errorf("No prefix configured, subject should pass through, got %q", got)
	}

	prefixed := NewEmailNotifier(config.SMTPConfig{SubjectPrefix: "[FlowScope]"}).(*EmailNotifier)
	if got := prefixed.subject("Alert"); got != "[FlowScope] Alert" {
		t.Errorf("Wrong prefixed subject: %q", got)
	}
}

func TestSend_NoRecipients(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	if err := n.Send("Alert", "<p>body</p>"); err == nil {
		t.Error("Send without recipients should fail")
	}
}
