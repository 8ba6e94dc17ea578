package ui

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"freegrab/pkg/marketplace"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ConsoleOptions configure a Console
type ConsoleOptions struct {
	// Color enables ANSI styling
	Color bool
	// Hyperlinks renders item names as OSC 8 links; ignored without Color
	Hyperlinks bool
	// ItemURL returns the page of an item for hyperlinks
	ItemURL func(itemID uint64) string
	// Notifier receives desktop notifications; nil disables them
	Notifier *Notifier
	// NotifyRateLimit and NotifyComplete select which events notify
	NotifyRateLimit bool
	NotifyComplete  bool
}

// Console prints one status line per run event
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	output   *termenv.Output
	styles   styles
	links    bool
	itemURL  func(uint64) string
	notifier *Notifier
	opts     ConsoleOptions
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	renderer := lipgloss.NewRenderer(w)
	if opts.Color {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Console{
		out:      w,
		output:   termenv.NewOutput(w),
		styles:   newStyles(renderer),
		links:    opts.Color && opts.Hyperlinks && opts.ItemURL != nil,
		itemURL:  opts.ItemURL,
		notifier: opts.Notifier,
		opts:     opts,
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// link renders an item name, as a hyperlink when enabled
func (c *Console) link(item marketplace.CatalogItem) string {
	if !c.links {
		return item.Name
	}
	return c.output.Hyperlink(c.itemURL(item.ID), item.Name)
}

// NoPrice reports an item that is not for sale
func (c *Console) NoPrice(item marketplace.CatalogItem) {
	c.println(c.styles.muted.Render(c.link(item)) + " has no price")
}

// Purchased reports a successful purchase
func (c *Console) Purchased(item marketplace.CatalogItem) {
	c.println(c.styles.success.Render("Purchased") + " " + c.link(item))
}

// Failed reports a rejected or undelivered purchase attempt
func (c *Console) Failed(item marketplace.CatalogItem, code int) {
	c.println(c.styles.failure.Render("Failed to purchase") + " " + c.link(item))
}

// RateLimited reports a rate-limit cool-down
func (c *Console) RateLimited(item marketplace.CatalogItem, wait time.Duration) {
	msg := fmt.Sprintf("Ratelimit reached. Waiting %d seconds..", int(wait.Seconds()))
	c.println(c.styles.rateLimit.Render(msg))

	if c.opts.NotifyRateLimit {
		c.notify("freegrab rate limited", msg)
	}
}

// Done prints the final tally
func (c *Console) Done(purchased uint64) {
	count := strconv.FormatUint(purchased, 10)
	c.println(fmt.Sprintf("%s Bought %s items", c.styles.success.Render("Done"), c.styles.count.Render(count)))

	if c.opts.NotifyComplete {
		c.notify("freegrab finished", fmt.Sprintf("Bought %s items", count))
	}
}

// Info prints a labelled value
func (c *Console) Info(label, value string) {
	c.println(c.styles.label.Render(label+":") + " " + value)
}

// Error prints an error line
func (c *Console) Error(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	c.println(c.styles.failure.Render(msg))
}

func (c *Console) notify(title, message string) {
	if c.notifier != nil {
		c.notifier.Send(title, message)
	}
}
