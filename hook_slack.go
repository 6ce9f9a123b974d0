package greyfilter

import (
	"context"
	"fmt"
	"os"

	"github.com/lestrrat-go/slack"
)

const (
	slackUsername string = "greyfilter"
	slackIcon     string = "https://github.com/linyows/greyfilter/blob/main/misc/greyfilter.svg"
)

// HookSlack alerts a channel whenever a recipient was let through because
// the decision store could not be asked.
type HookSlack struct {
	post func(ctx context.Context, channel, text string) error
}

func (h *HookSlack) Name() string {
	return "slack"
}

func (h *HookSlack) poster() (func(context.Context, string, string) error, string, error) {
	channel := os.Getenv("SLACK_CHANNEL")
	if len(channel) == 0 {
		return nil, "", fmt.Errorf("missing SLACK_CHANNEL, please set `SLACK_CHANNEL`")
	}

	if h.post != nil {
		return h.post, channel, nil
	}

	token := os.Getenv("SLACK_TOKEN")
	if len(token) == 0 {
		return nil, "", fmt.Errorf("missing SLACK_TOKEN, please set `SLACK_TOKEN`")
	}

	cl := slack.New(token)
	h.post = func(ctx context.Context, channel, text string) error {
		_, err := cl.Chat().PostMessage(channel).Username(slackUsername).IconURL(slackIcon).Text(text).Do(ctx)
		return err
	}

	return h.post, channel, nil
}

func (h *HookSlack) AfterInit() {
}

func (h *HookSlack) AfterDecision(d *AfterDecisionData) {
	if d.Err == nil {
		return
	}

	post, channel, err := h.poster()
	if err != nil {
		hookLog(h).Error(err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	text := fmt.Sprintf("decision store failed, allowed `%s` in session `%s`: %s", d.Fingerprint, d.Session, d.Err)
	if err := post(ctx, channel, text); err != nil {
		hookLog(h).WithError(err).Error("slack post error")
	}
}
