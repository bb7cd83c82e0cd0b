package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

type VerificationStage string

const (
	StageSelection              VerificationStage = "selection"
	StageAuthenticating         VerificationStage = "authenticating"
	StageVerificationProcessing VerificationStage = "processing"
	StageVerified               VerificationStage = "success"
	StageFailed                 VerificationStage = "failed"
	StagePhotoUpload            VerificationStage = "photo-upload"
)

type PhotoSide string

const (
	PhotoFront PhotoSide = "front"
	PhotoBack  PhotoSide = "back"
)

// VerificationResult is what the bank eventually answers for a verification
// request: verified personal info, or a failure reason.
type VerificationResult struct {
	Success      bool
	PersonalInfo models.PersonalInfo
	Reason       string
}

// BankVerificationProvider is the identity-verification collaborator.
type BankVerificationProvider interface {
	InitiateVerification(ctx context.Context, bankID string) (VerificationResult, error)
}

// OutcomeDecider decides whether a simulated verification succeeds.
type OutcomeDecider interface {
	Succeed() bool
}

// FixedDecider always returns the same outcome.
type FixedDecider bool

func (d FixedDecider) Succeed() bool { return bool(d) }

// ProbabilityDecider succeeds with probability P.
type ProbabilityDecider struct {
	P float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewProbabilityDecider(p float64, seed int64) *ProbabilityDecider {
	return &ProbabilityDecider{P: p, rng: rand.New(rand.NewSource(seed))}
}

func (d *ProbabilityDecider) Succeed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() < d.P
}

// DemoPersonalInfo is the profile a successful verification returns.
func DemoPersonalInfo() models.PersonalInfo {
	return models.PersonalInfo{
		FullName:    "Demo User",
		IDNumber:    "****1234",
		DateOfBirth: "1990-01-15",
		Address:     "123 Jalan Example, Kuala Lumpur",
		Email:       "user@example.com",
		Phone:       "+60123456789",
	}
}

// SimulatedBankProvider stands in for a bank's data-sharing API.
type SimulatedBankProvider struct {
	decider OutcomeDecider
}

func NewSimulatedBankProvider(decider OutcomeDecider) *SimulatedBankProvider {
	return &SimulatedBankProvider{decider: decider}
}

func (p *SimulatedBankProvider) InitiateVerification(_ context.Context, _ string) (VerificationResult, error) {
	if p.decider.Succeed() {
		return VerificationResult{Success: true, PersonalInfo: DemoPersonalInfo()}, nil
	}
	return VerificationResult{Reason: "Service temporarily unavailable"}, nil
}

type VerificationView struct {
	Stage           VerificationStage             `json:"stage"`
	Status          models.BankVerificationStatus `json:"status"`
	SelectedBank    string                        `json:"selectedBank,omitempty"`
	FrontPhoto      bool                          `json:"frontPhoto"`
	BackPhoto       bool                          `json:"backPhoto"`
	CanProceed      bool                          `json:"canProceed"`
	CanVerifyPhotos bool                          `json:"canVerifyPhotos"`
	CanContinue     bool                          `json:"canContinue"`
	FailureReason   string                        `json:"failureReason,omitempty"`
	Attempts        int                           `json:"attempts"`
}

// VerificationService runs the identity-verification step of onboarding.
type VerificationService struct {
	sessionID string
	store     *SessionStore
	banks     *BankService
	provider  BankVerificationProvider
	timers    *scheduler.Group
	cfg       *config.FlowConfig
	audit     *audit.Logger

	mu       sync.Mutex
	stage    VerificationStage
	bank     string
	front    bool
	back     bool
	reason   string
	attempts int
}

func NewVerificationService(sessionID string, store *SessionStore, banks *BankService, provider BankVerificationProvider, sched scheduler.Scheduler, cfg *config.FlowConfig, auditLogger *audit.Logger) *VerificationService {
	v := &VerificationService{
		sessionID: sessionID,
		store:     store,
		banks:     banks,
		provider:  provider,
		timers:    scheduler.NewGroup(sched),
		cfg:       cfg,
		audit:     auditLogger,
	}
	v.Reset()
	return v
}

// Reset puts the sub-flow back at bank selection, or at success if the
// session is already verified. Pending timers are cancelled.
func (v *VerificationService) Reset() {
	v.timers.StopAll()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.stage = StageSelection
	if v.store.Snapshot().BankVerificationStatus == models.VerificationSuccess {
		v.stage = StageVerified
	}
	v.bank = ""
	v.front, v.back = false, false
	v.reason = ""
}

// Close cancels pending timers so nothing fires after the screen is gone.
func (v *VerificationService) Close() {
	v.timers.StopAll()
}

func (v *VerificationService) View() VerificationView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VerificationView{
		Stage:           v.stage,
		Status:          v.store.Snapshot().BankVerificationStatus,
		SelectedBank:    v.bank,
		FrontPhoto:      v.front,
		BackPhoto:       v.back,
		CanProceed:      v.canProceedLocked(),
		CanVerifyPhotos: v.stage == StagePhotoUpload && v.front && v.back,
		CanContinue:     v.stage == StageVerified,
		FailureReason:   v.reason,
		Attempts:        v.attempts,
	}
}

func (v *VerificationService) canProceedLocked() bool {
	return (v.stage == StageSelection || v.stage == StageFailed) && v.bank != ""
}

func (v *VerificationService) SelectBank(bank string) error {
	b, ok := v.banks.Find(bank)
	if !ok {
		return ErrUnknownBank
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StageSelection {
		return ErrInvalidTransition
	}
	v.bank = b.Name
	return nil
}

// Proceed starts the simulated bank redirect. It is also the retry action
// from the failed stage.
func (v *VerificationService) Proceed() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stage != StageSelection && v.stage != StageFailed {
		return ErrInvalidTransition
	}
	if v.bank == "" {
		return validationError("verification", string(v.stage), ErrBankNotSelected)
	}

	v.audit.LogTransition(v.sessionID, "verification", string(v.stage), string(StageAuthenticating))
	v.stage = StageAuthenticating
	v.reason = ""
	v.attempts++
	v.timers.After(v.cfg.AuthenticatingDelay, v.enterProcessing)
	return nil
}

func (v *VerificationService) Retry() error {
	v.mu.Lock()
	failed := v.stage == StageFailed
	v.mu.Unlock()
	if !failed {
		return ErrInvalidTransition
	}
	return v.Proceed()
}

func (v *VerificationService) enterProcessing() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StageAuthenticating {
		return
	}
	v.stage = StageVerificationProcessing
	v.timers.After(v.cfg.VerificationProcessingDelay, v.resolve)
}

func (v *VerificationService) resolve() {
	v.mu.Lock()
	if v.stage != StageVerificationProcessing {
		v.mu.Unlock()
		return
	}
	bank := v.bank
	attempt := v.attempts
	v.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := v.provider.InitiateVerification(ctx, bank)
	if err != nil {
		v.audit.LogError(v.sessionID, "verification", err)
		result = VerificationResult{Reason: err.Error()}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StageVerificationProcessing || v.attempts != attempt {
		return
	}

	if result.Success {
		v.markVerifiedLocked(result.PersonalInfo, "bank-redirect")
		return
	}

	v.stage = StageFailed
	v.reason = result.Reason
	v.store.SetVerification(models.VerificationFailed)
	v.audit.LogVerification(v.sessionID, bank, "bank-redirect", string(models.VerificationFailed), result.Reason)
}

func (v *VerificationService) markVerifiedLocked(info models.PersonalInfo, method string) {
	v.stage = StageVerified
	v.reason = ""
	v.store.SetVerification(models.VerificationSuccess)
	v.store.SetPersonalInfo(info)
	v.audit.LogVerification(v.sessionID, v.bank, method, string(models.VerificationSuccess), "")
}

// UsePhotoUpload switches a failed verification to the ID-photo fallback.
func (v *VerificationService) UsePhotoUpload() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StageFailed {
		return ErrInvalidTransition
	}
	v.stage = StagePhotoUpload
	v.front, v.back = false, false
	return nil
}

func (v *VerificationService) CapturePhoto(side PhotoSide) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StagePhotoUpload {
		return ErrInvalidTransition
	}
	switch side {
	case PhotoFront:
		v.front = true
	case PhotoBack:
		v.back = true
	default:
		return ErrUnknownOption
	}
	return nil
}

// VerifyPhotos completes verification once both sides of the ID are present.
func (v *VerificationService) VerifyPhotos() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage != StagePhotoUpload {
		return ErrInvalidTransition
	}
	if !v.front || !v.back {
		return validationError("verification", string(v.stage), ErrPhotosMissing)
	}
	v.markVerifiedLocked(DemoPersonalInfo(), "id-photos")
	return nil
}
