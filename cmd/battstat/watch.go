package main

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/events"
	"github.com/charlie0129/battstat/pkg/presenter"
	"github.com/charlie0129/battstat/pkg/source"
)

func NewWatchCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: gBasic,
		Short:   "Watch battery status in the terminal",
		Long: `Read the battery directly and show it in a full-screen view.

Press r or click [Register] to subscribe to battery events, u or [Unregister] to unsubscribe.
Press q or Esc to quit. Losing terminal focus pauses the subscription.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, conf); err != nil {
				return err
			}

			src, err := source.New(conf.Source(), source.Options{
				SysfsRoot: conf.SysfsRoot(),
				Battery:   conf.BatteryName(),
				Index:     conf.BatteryIndex(),
			})
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			// Log lines would tear the screen.
			logrus.SetOutput(io.Discard)
			defer logrus.SetOutput(cmd.ErrOrStderr())

			return runWatch(cmd.Context(), screen, src, conf)
		},
	}

	flags.register(cmd, false)

	return cmd
}

func runWatch(ctx context.Context, screen tcell.Screen, src source.Source, conf config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := events.NewHub()
	go hub.Run(ctx)

	view := newWatchView(screen, src.Name())
	p := presenter.New(hub, view, presenter.WithAutoRegister(conf.AutoRegister()))
	view.state = p.State

	poller := source.NewPoller(src, hub, conf.PollInterval())
	go poller.Run(ctx)

	screen.EnableMouse()
	screen.EnableFocus()
	screen.Clear()

	p.Start()
	defer p.Stop()
	view.draw()

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if quit := view.handle(ev, p); quit {
			return nil
		}
		view.draw()
	}
}

const (
	registerLabel   = "[Register]"
	unregisterLabel = "[Unregister]"
)

// watchView is the terminal Display of the watch command.
type watchView struct {
	screen tcell.Screen
	source string
	state  func() presenter.State

	mu   sync.Mutex
	text string

	registerX, unregisterX, buttonY int
}

func newWatchView(screen tcell.Screen, sourceName string) *watchView {
	return &watchView{
		screen: screen,
		source: sourceName,
		text:   "No battery info yet. Press r to register.",
		state:  func() presenter.State { return presenter.Unsubscribed },
	}
}

// SetText may be called from the hub goroutine. The redraw happens on the
// event loop.
func (v *watchView) SetText(s string) {
	v.mu.Lock()
	v.text = s
	v.mu.Unlock()

	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (v *watchView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.text
}

// handle applies one terminal event and reports whether to quit.
func (v *watchView) handle(ev tcell.Event, p *presenter.Presenter) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' || ev.Rune() == 'Q' {
			return true
		}
		switch ev.Rune() {
		case 'r', 'R':
			p.Subscribe()
		case 'u', 'U':
			v.unsubscribe(p)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		switch {
		case v.hit(x, y, v.registerX, registerLabel):
			p.Subscribe()
		case v.hit(x, y, v.unregisterX, unregisterLabel):
			v.unsubscribe(p)
		}
	case *tcell.EventFocus:
		if ev.Focused {
			p.Start()
		} else {
			p.Stop()
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *watchView) unsubscribe(p *presenter.Presenter) {
	if err := p.Unsubscribe(); err != nil {
		logrus.WithError(err).Warn("unregister ignored")
	}
}

func (v *watchView) hit(x, y, bx int, label string) bool {
	return y == v.buttonY && x >= bx && x < bx+len(label)
}

func (v *watchView) draw() {
	v.screen.Clear()

	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorTeal)
	grayStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	drawText(v.screen, 2, 0, "BATTERY STATUS", titleStyle)
	drawText(v.screen, 18, 0, "(source: "+v.source+")", grayStyle)

	v.buttonY = 2
	v.registerX = 2
	v.unregisterX = v.registerX + len(registerLabel) + 2

	registerStyle := tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	unregisterStyle := registerStyle
	stateStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)
	if v.state() == presenter.Subscribed {
		registerStyle = registerStyle.Bold(true).Background(tcell.ColorTeal)
		stateStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	} else {
		unregisterStyle = unregisterStyle.Bold(true).Background(tcell.ColorTeal)
	}
	drawText(v.screen, v.registerX, v.buttonY, registerLabel, registerStyle)
	drawText(v.screen, v.unregisterX, v.buttonY, unregisterLabel, unregisterStyle)
	drawText(v.screen, v.unregisterX+len(unregisterLabel)+2, v.buttonY, v.state().String(), stateStyle)

	for i, line := range strings.Split(v.Text(), "\n") {
		drawText(v.screen, 2, 4+i, line, tcell.StyleDefault)
	}

	_, height := v.screen.Size()
	drawText(v.screen, 2, height-1, "r register  u unregister  q quit", grayStyle)

	v.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
