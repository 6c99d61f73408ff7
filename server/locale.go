package main

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fitlog/i18n"
)

// localizer resolves screen strings for one request.
type localizer struct {
	bundle  *i18n.Bundle
	tag     language.Tag
	printer *message.Printer
}

func (l localizer) T(key string) string {
	return l.bundle.T(l.tag.String(), key)
}

func (l localizer) Sprintf(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

func (l localizer) Lang() string {
	return l.tag.String()
}

func (l localizer) Languages() []string {
	tags := l.bundle.Supported()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

func (s *server) strings(w http.ResponseWriter, r *http.Request) localizer {
	tag, remember := s.bundle.Resolve(r, s.locale)
	if remember {
		i18n.SetCookie(w, tag)
	}
	return localizer{bundle: s.bundle, tag: tag, printer: s.bundle.Printer(tag)}
}
