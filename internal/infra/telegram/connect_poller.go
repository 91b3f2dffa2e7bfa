package telegram

import "gopkg.in/telebot.v3"

// ConnectPoller wraps another poller and reports every time polling starts. The bot
// may start polling more than once per process, so OnConnect must be idempotent.
type ConnectPoller struct {
	Poller    telebot.Poller
	OnConnect func(b *telebot.Bot)
}

func (p *ConnectPoller) Poll(b *telebot.Bot, updates chan telebot.Update, stop chan struct{}) {
	if p.OnConnect != nil {
		go p.OnConnect(b)
	}
	p.Poller.Poll(b, updates, stop)
}
