package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lendborrow/lendborrow-api/internal/helpers"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"github.com/lendborrow/lendborrow-api/internal/walletgate"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

const navigationBuffer = 16

// NavigationEvent is published every time the gate routes a session
type NavigationEvent struct {
	SessionID  uuid.UUID             `json:"session_id"`
	Path       string                `json:"path"`
	WalletType walletgate.WalletType `json:"wallet_type"`
	Sequence   uint64                `json:"sequence"`
	At         time.Time             `json:"at"`
}

// SessionSnapshot is a point in time view of one wallet session
type SessionSnapshot struct {
	ID                  uuid.UUID                 `json:"id"`
	Address             string                    `json:"address,omitempty"`
	Connected           bool                      `json:"connected"`
	WalletType          walletgate.WalletType     `json:"wallet_type,omitempty"`
	Classifying         bool                      `json:"classifying"`
	ClassificationError string                    `json:"classification_error,omitempty"`
	Shared              walletgate.WalletSnapshot `json:"shared_wallet_type"`
	Destination         string                    `json:"destination,omitempty"`
	Navigations         uint64                    `json:"navigations"`
	CreatedAt           time.Time                 `json:"created_at"`
}

// session hosts one gate. mu serialises every observable write so the gate's
// reactions run one at a time and to completion.
type session struct {
	id        uuid.UUID
	createdAt time.Time
	logger    *zap.Logger

	mu                sync.Mutex
	address           *walletgate.Observable[walletgate.ConnectionAddress]
	walletType        *walletgate.Observable[walletgate.WalletType]
	store             *walletgate.WalletStore
	stopGate          func()
	generation        uint64
	cancelClassify    context.CancelFunc
	classifying       bool
	classificationErr string
	closed            bool

	navMu       sync.Mutex
	destination string
	navigations uint64
	events      *helpers.Broadcaster[NavigationEvent]

	wg sync.WaitGroup
}

// Navigate records the destination and publishes it. It runs inside a gate
// reaction, with mu held.
func (s *session) Navigate(path string) {
	s.navMu.Lock()
	s.destination = path
	s.navigations++
	seq := s.navigations
	s.navMu.Unlock()

	dropped := s.events.Publish(NavigationEvent{
		SessionID:  s.id,
		Path:       path,
		WalletType: s.walletType.Get(),
		Sequence:   seq,
		At:         time.Now(),
	})
	if dropped > 0 {
		s.logger.Warn("Dropped slow navigation subscribers", zap.Int("dropped", dropped))
	}
}

func (s *session) snapshot() SessionSnapshot {
	s.navMu.Lock()
	destination, navigations := s.destination, s.navigations
	s.navMu.Unlock()

	address := s.address.Get()
	return SessionSnapshot{
		ID:                  s.id,
		Address:             string(address),
		Connected:           address.Present(),
		WalletType:          s.walletType.Get(),
		Classifying:         s.classifying,
		ClassificationError: s.classificationErr,
		Shared:              s.store.Snapshot(),
		Destination:         destination,
		Navigations:         navigations,
		CreatedAt:           s.createdAt,
	}
}

// detach clears the address before the classification so neither step writes
// the shared wallet type. Callers hold mu.
func (s *session) detach() {
	s.generation++
	if s.cancelClassify != nil {
		s.cancelClassify()
		s.cancelClassify = nil
	}
	s.classifying = false
	s.classificationErr = ""
	s.address.Set("")
	s.walletType.Set(walletgate.WalletTypeUnset)
}

// SessionService hosts one wallet gate per browser session. The connection
// address comes from the client; the classification is resolved in the
// background by a WalletClassifier.
type SessionService struct {
	classifier      interfaces.WalletClassifier
	classifyTimeout time.Duration
	logger          *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewSessionService creates a session service
func NewSessionService(classifier interfaces.WalletClassifier, classifyTimeout time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		classifier:      classifier,
		classifyTimeout: classifyTimeout,
		logger:          logger,
		sessions:        make(map[uuid.UUID]*session),
	}
}

// CreateSession starts a disconnected session with a running gate
func (s *SessionService) CreateSession() SessionSnapshot {
	id := uuid.New()
	sess := &session{
		id:         id,
		createdAt:  time.Now(),
		logger:     s.logger.With(zap.String("session_id", id.String())),
		address:    walletgate.NewObservable[walletgate.ConnectionAddress](""),
		walletType: walletgate.NewObservable(walletgate.WalletTypeUnset),
		store:      walletgate.NewWalletStore(),
		events:     helpers.NewBroadcaster[NavigationEvent](),
	}

	sess.mu.Lock()
	sess.stopGate = walletgate.NewGate(sess.address, sess.walletType, sess.store, sess, sess.logger).Start()
	snap := sess.snapshot()
	sess.mu.Unlock()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.logger.Info("Session created")
	return snap
}

// GetSession returns the current snapshot of a session
func (s *SessionService) GetSession(id uuid.UUID) (SessionSnapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return SessionSnapshot{}, ErrSessionNotFound
	}
	return sess.snapshot(), nil
}

// Connect reports the wallet address connected in the session. An empty
// address disconnects. Classification of a new address starts in the
// background; the returned snapshot does not wait for it. Reporting the
// current address again is a no-op unless its classification failed, in which
// case classification is retried.
func (s *SessionService) Connect(id uuid.UUID, address walletgate.ConnectionAddress) (SessionSnapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return SessionSnapshot{}, ErrSessionNotFound
	}

	if sess.address.Get() == address {
		// reporting the same wallet again retries a failed classification
		if address.Present() && sess.classificationErr != "" && !sess.classifying {
			sess.generation++
			sess.classificationErr = ""
			sess.logger.Info("Retrying wallet classification", zap.String("address", string(address)))
			s.startClassification(sess, address)
		}
		return sess.snapshot(), nil
	}

	sess.detach()
	if !address.Present() {
		sess.logger.Info("Wallet disconnected")
		return sess.snapshot(), nil
	}

	sess.address.Set(address)
	sess.logger.Info("Wallet connected", zap.String("address", string(address)))
	s.startClassification(sess, address)

	return sess.snapshot(), nil
}

// Disconnect clears the session's wallet address
func (s *SessionService) Disconnect(id uuid.UUID) (SessionSnapshot, error) {
	return s.Connect(id, "")
}

// startClassification resolves the wallet type of address. The result is
// applied only if the session still shows the same connection. A failed
// classification leaves the type unset, as if still pending. Callers hold sess.mu.
func (s *SessionService) startClassification(sess *session, address walletgate.ConnectionAddress) {
	generation := sess.generation
	ctx, cancel := context.WithTimeout(context.Background(), s.classifyTimeout)
	sess.cancelClassify = cancel
	sess.classifying = true

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer cancel()

		walletType, err := s.classifier.Classify(ctx, address)

		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.closed || sess.generation != generation {
			return
		}
		sess.classifying = false
		sess.cancelClassify = nil

		if err != nil {
			sess.classificationErr = err.Error()
			sess.logger.Warn("Wallet classification failed, treating as pending",
				zap.String("address", string(address)),
				zap.Error(err),
			)
			return
		}
		sess.walletType.Set(walletType)
	}()
}

// SubscribeNavigation streams the session's navigation events. The returned
// function unsubscribes.
func (s *SessionService) SubscribeNavigation(id uuid.UUID) (<-chan NavigationEvent, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch := sess.events.Subscribe(navigationBuffer)
	return ch, func() { sess.events.Unsubscribe(ch) }, nil
}

// CloseSession stops the session's gate and ends its navigation streams
func (s *SessionService) CloseSession(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.closeSession(sess)
	return nil
}

// Close ends every session and waits for in-flight classifications
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.closeSession(sess)
	}
}

// Count returns the number of open sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) closeSession(sess *session) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.closed = true
	if sess.cancelClassify != nil {
		sess.cancelClassify()
	}
	sess.stopGate()
	sess.mu.Unlock()

	sess.wg.Wait()
	sess.events.Close()
	sess.logger.Info("Session closed")
}

func (s *SessionService) lookup(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
