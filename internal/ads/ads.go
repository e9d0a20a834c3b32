package ads

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// BannerHeight is the number of lines the banner region always occupies.
const BannerHeight = 1

var ErrNoAds = errors.New("no ads available")

type Inventory struct {
	Banners       []string
	Interstitials []string
}

type Loader interface {
	Load(ctx context.Context) (Inventory, error)
}

type LoaderFunc func(ctx context.Context) (Inventory, error)

func (f LoaderFunc) Load(ctx context.Context) (Inventory, error) {
	return f(ctx)
}

// Static serves house ads from configuration.
func Static(banners, interstitials []string) Loader {
	return LoaderFunc(func(context.Context) (Inventory, error) {
		inv := Inventory{
			Banners:       lo.Filter(banners, func(s string, _ int) bool { return strings.TrimSpace(s) != "" }),
			Interstitials: lo.Filter(interstitials, func(s string, _ int) bool { return strings.TrimSpace(s) != "" }),
		}
		if len(inv.Banners) == 0 && len(inv.Interstitials) == 0 {
			return Inventory{}, ErrNoAds
		}
		return inv, nil
	})
}

type Interstitial struct {
	Text string
}

type Service struct {
	loader Loader

	once      sync.Once
	lock      sync.Mutex
	inventory Inventory
	loaded    bool
	banner    int
	next      int
	showing   atomic.Bool
}

func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Initialize loads the inventory once. Failures leave the service in its
// placeholder state and are only logged.
func (s *Service) Initialize(ctx context.Context) {
	s.once.Do(func() {
		if s.loader == nil {
			return
		}
		inv, err := s.loader.Load(ctx)
		if err != nil {
			logrus.Warnf("ads: loading inventory failed: %v", err)
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		s.inventory = inv
		s.loaded = true
		logrus.Debugf("ads: initialized with %d banners, %d interstitials", len(inv.Banners), len(inv.Interstitials))
	})
}

// Banner returns the current banner line, or a blank placeholder of the same
// height when nothing could be loaded.
func (s *Service) Banner() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.loaded || len(s.inventory.Banners) == 0 {
		return Placeholder()
	}
	return s.inventory.Banners[s.banner%len(s.inventory.Banners)]
}

// Rotate advances to the next banner.
func (s *Service) Rotate() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.banner++
}

// ShowInterstitial hands out the next interstitial unless one is already
// showing or none are available.
func (s *Service) ShowInterstitial() (Interstitial, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.loaded || len(s.inventory.Interstitials) == 0 {
		return Interstitial{}, false
	}
	if !s.showing.CompareAndSwap(false, true) {
		return Interstitial{}, false
	}
	text := s.inventory.Interstitials[s.next%len(s.inventory.Interstitials)]
	s.next++
	return Interstitial{Text: text}, true
}

func (s *Service) DismissInterstitial() {
	s.showing.Store(false)
}

func (s *Service) Showing() bool {
	return s.showing.Load()
}

func Placeholder() string {
	return strings.Repeat("\n", BannerHeight-1)
}
