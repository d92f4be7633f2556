// Package command decides what an incoming chat message asks for.
package command

import (
	"context"
	"strings"

	"kazoeru/internal/counting"
	"kazoeru/internal/matcher"
)

// Message is an inbound chat message as seen by the router.
type Message struct {
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Text        string
	MentionsBot bool
}

// Handler processes a routed message and optionally returns reply text.
type Handler func(ctx context.Context, msg counting.Message) (counting.Reply, bool, error)

// Rule pairs a predicate with the handler that runs when it matches.
// A nil Handle means the message is accepted and ignored.
type Rule struct {
	Name   string
	Match  func(Message) bool
	Handle Handler
}

// Router evaluates rules in order; the first match wins.
type Router struct {
	rules []Rule
}

func NewRouter(rules ...Rule) *Router {
	return &Router{rules: rules}
}

// Engine is the set of operations DefaultRules dispatches to.
type Engine interface {
	Register(ctx context.Context, msg counting.Message) (counting.Reply, bool, error)
	Overwrite(ctx context.Context, msg counting.Message) (counting.Reply, bool, error)
	Delete(ctx context.Context, msg counting.Message) (counting.Reply, bool, error)
	Count(ctx context.Context, msg counting.Message) (counting.Reply, bool, error)
}

// DefaultRules checks registration, then overwrite, then deletion for messages
// that mention the bot; a mention without a trigger does nothing, and every
// other message is a counting candidate.
func DefaultRules(e Engine) []Rule {
	return []Rule{
		{Name: "register", Match: mentionWith(matcher.RegisterTrigger), Handle: e.Register},
		{Name: "overwrite", Match: mentionWith(matcher.OverwriteTrigger), Handle: e.Overwrite},
		{Name: "delete", Match: mentionWith(matcher.DeleteTrigger), Handle: e.Delete},
		{Name: "mention", Match: func(m Message) bool { return m.MentionsBot }},
		{Name: "count", Match: func(Message) bool { return true }, Handle: e.Count},
	}
}

func mentionWith(trigger string) func(Message) bool {
	return func(m Message) bool {
		return m.MentionsBot && strings.Contains(m.Text, trigger)
	}
}

// Result tells which rule fired and what to answer. Rule is empty when no rule
// fired, which includes every bot-authored message.
type Result struct {
	Rule     string
	Reply    counting.Reply
	HasReply bool
}

func (r *Router) Route(ctx context.Context, msg Message) (Result, error) {
	if msg.AuthorIsBot {
		return Result{}, nil
	}
	for _, rule := range r.rules {
		if !rule.Match(msg) {
			continue
		}
		res := Result{Rule: rule.Name}
		if rule.Handle == nil {
			return res, nil
		}
		reply, ok, err := rule.Handle(ctx, counting.Message{
			ChannelID: msg.ChannelID,
			AuthorID:  msg.AuthorID,
			Text:      msg.Text,
		})
		if err != nil {
			return res, err
		}
		res.Reply, res.HasReply = reply, ok
		return res, nil
	}
	return Result{}, nil
}
