//go:build linux

package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/pilebones/go-udev/netlink"

	"kobobackup/internal/logging"
)

// udevSource listens for udev netlink events announcing a block device that
// carries the label.
type udevSource struct {
	label  string
	logger *slog.Logger
}

func newUdevSource(label string, logger *slog.Logger) (Source, error) {
	return &udevSource{
		label:  label,
		logger: logging.NewComponentLogger(logger, "udev-source"),
	}, nil
}

func (s *udevSource) Name() string { return "udev" }

func (s *udevSource) Run(ctx context.Context, events chan<- Attach) error {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return fmt.Errorf("connect to udev netlink socket: %w", err)
	}
	defer conn.Close()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, s.buildMatcher())
	defer close(monitorQuit)

	s.logger.Info("udev source started",
		logging.String(logging.FieldEventType, "udev_source_started"),
		logging.String(logging.FieldLabel, s.label),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case uevent := <-queue:
			ev, ok := s.toAttach(uevent)
			if !ok {
				continue
			}
			if !emit(ctx, events, ev) {
				return ctx.Err()
			}
		case err := <-errs:
			s.logger.Warn("udev monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "udev_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device attach may be missed"),
			)
		}
	}
}

// buildMatcher matches block devices whose filesystem label equals the
// target when they are added.
func (s *udevSource) buildMatcher() netlink.Matcher {
	action := "^add$"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":   "^block$",
			"ID_FS_LABEL": "^" + regexp.QuoteMeta(s.label) + "$",
		},
	})
	return rules
}

func (s *udevSource) toAttach(uevent netlink.UEvent) (Attach, bool) {
	label := uevent.Env["ID_FS_LABEL"]
	if label != s.label {
		s.logger.Debug("ignoring uevent for other label",
			logging.String("action", string(uevent.Action)),
			logging.String(logging.FieldLabel, label),
		)
		return Attach{}, false
	}
	devname := uevent.Env["DEVNAME"]
	if devname == "" {
		devname = uevent.KObj
	}
	return Attach{Label: label, Source: s.Name(), Detail: devname}, true
}
