package services

import "github.com/ruralpay/investflow/internal/models"

// Navigator moves the session to another screen. Timer-driven transitions
// use it to leave a screen on their own.
type Navigator interface {
	Navigate(route models.Route)
}

type NavigatorFunc func(route models.Route)

func (f NavigatorFunc) Navigate(route models.Route) { f(route) }
