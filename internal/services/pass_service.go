package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/domain/models"
	"buspass/internal/events"
	"buspass/internal/logger"
	"buspass/internal/otp"
	"buspass/internal/repositories"
	"buspass/internal/utils"
)

const (
	defaultOTPTTL = 5 * time.Minute
	otpPurpose    = "pass"
)

type PassService struct {
	Applications repositories.PassApplicationRepository
	Routes       repositories.RouteRepository
	Users        repositories.UserRepository
	OTP          otp.Store
	OTPTTL       time.Duration
	Events       events.Publisher
	Now          func() time.Time
	RequestID    string
}

func (s PassService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// VerifyAadhaar is the mock identity check: 12 digits, and an even last digit passes.
func VerifyAadhaar(number string) error {
	if !utils.IsDigits(number, 12) {
		return domain.ValidationError{Field: "aadhaarNumber", Msg: "Invalid Aadhaar number format."}
	}
	if (number[11]-'0')%2 != 0 {
		return domain.ValidationError{Field: "aadhaarNumber", Msg: "Aadhaar verification failed."}
	}
	return nil
}

// Apply files a new application and sends the first OTP. A user may hold only
// one application that is pending or in verification.
func (s PassService) Apply(ctx context.Context, rc domain.RequestContext, in models.PassApplicationInput) (models.PassApplication, error) {
	aadhaar := strings.TrimSpace(in.AadhaarNumber)
	mobile := strings.TrimSpace(in.Mobile)
	if err := VerifyAadhaar(aadhaar); err != nil {
		return models.PassApplication{}, err
	}
	if !utils.IsDigits(mobile, 10) {
		return models.PassApplication{}, domain.ValidationError{Field: "mobile", Msg: "Mobile number must be 10 digits"}
	}
	amount, ok := utils.ComputePassFare(in.ValidityMonths, in.Category)
	if !ok {
		return models.PassApplication{}, domain.ValidationError{Field: "validityMonths", Msg: "validity must be 1, 3, 6 or 12 months"}
	}

	open, err := s.Applications.HasOpen(ctx, rc.UserID)
	if err != nil {
		return models.PassApplication{}, err
	}
	if open {
		return models.PassApplication{}, domain.ValidationError{Msg: "You already have a pending application"}
	}
	exists, err := s.Routes.Exists(ctx, in.RouteID)
	if err != nil {
		return models.PassApplication{}, err
	}
	if !exists {
		return models.PassApplication{}, domain.NotFoundError{Resource: "route"}
	}

	app := models.PassApplication{
		UserID:         rc.UserID,
		RouteID:        in.RouteID,
		Category:       in.Category,
		ValidityMonths: in.ValidityMonths,
		AadhaarNumber:  aadhaar,
		AadhaarOK:      true,
		Mobile:         mobile,
		Status:         models.PassPending,
		Amount:         amount,
		CreatedAt:      s.now(),
	}
	id, err := s.Applications.Create(ctx, app)
	if err != nil {
		return models.PassApplication{}, err
	}
	app.ID = id
	logger.Event(s.RequestID, "passes", "apply", fmt.Sprintf("application_id=%d category=%s", id, app.Category))

	if err := s.sendOTP(ctx, app); err != nil {
		logger.Error(s.RequestID, "passes", "send_otp", err)
	}
	return app.Masked(), nil
}

// IssueOTP sends a fresh code to the application's mobile number.
func (s PassService) IssueOTP(ctx context.Context, rc domain.RequestContext, id int64) error {
	app, err := s.owned(ctx, rc, id, "verify")
	if err != nil {
		return err
	}
	if app.Status != models.PassPending && app.Status != models.PassVerification {
		return domain.ValidationError{Field: "status", Msg: fmt.Sprintf("Cannot verify application in %s status", app.Status)}
	}
	return s.sendOTP(ctx, app)
}

// VerifyOTP confirms the mobile number and moves the application to verification.
func (s PassService) VerifyOTP(ctx context.Context, rc domain.RequestContext, id int64, code string) (models.PassApplication, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.PassApplication{}, domain.ValidationError{Field: "otp", Msg: "Please provide application ID and OTP"}
	}
	app, err := s.owned(ctx, rc, id, "verify")
	if err != nil {
		return models.PassApplication{}, err
	}
	if err := s.otpStore().Verify(ctx, otp.Key(otpPurpose, app.ID), code); err != nil {
		if errors.Is(err, otp.ErrNotFound) || errors.Is(err, otp.ErrMismatch) {
			return models.PassApplication{}, domain.ValidationError{Field: "otp", Msg: "Invalid or expired OTP"}
		}
		return models.PassApplication{}, domain.InternalError{Msg: "Error verifying OTP", Err: err}
	}
	if err := s.Applications.MarkMobileVerified(ctx, app.ID); err != nil {
		return models.PassApplication{}, err
	}
	app.MobileVerified = true
	app.Status = models.PassVerification
	logger.Event(s.RequestID, "passes", "verify_otp", fmt.Sprintf("application_id=%d", app.ID))
	return app.Masked(), nil
}

func (s PassService) Cancel(ctx context.Context, rc domain.RequestContext, id int64) error {
	app, err := s.owned(ctx, rc, id, "cancel")
	if err != nil {
		return err
	}
	if app.Status != models.PassPending && app.Status != models.PassVerification {
		return domain.ValidationError{Field: "status", Msg: fmt.Sprintf("Cannot cancel application in %s status", app.Status)}
	}
	if err := s.Applications.UpdateStatus(ctx, id, models.PassCancelled); err != nil {
		return err
	}
	logger.Event(s.RequestID, "passes", "cancel", fmt.Sprintf("application_id=%d", id))
	return nil
}

func (s PassService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.PassApplication, error) {
	app, err := s.owned(ctx, rc, id, "view")
	if err != nil {
		return models.PassApplication{}, err
	}
	return app.Masked(), nil
}

func (s PassService) ListMine(ctx context.Context, rc domain.RequestContext) ([]models.PassApplication, error) {
	apps, err := s.Applications.ListByUser(ctx, rc.UserID)
	if err != nil {
		return nil, err
	}
	return maskAll(apps), nil
}

func (s PassService) ListAll(ctx context.Context, status string) ([]models.PassApplication, error) {
	apps, err := s.Applications.List(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	return maskAll(apps), nil
}

// UpdateStatus applies an admin decision. Approval issues the pass code and
// sets the validity window starting today.
func (s PassService) UpdateStatus(ctx context.Context, id int64, in models.PassStatusUpdate) (models.PassApplication, error) {
	switch in.Status {
	case models.PassPending, models.PassVerification, models.PassApproved, models.PassRejected:
	default:
		return models.PassApplication{}, domain.ValidationError{Field: "status", Msg: "Invalid status"}
	}
	app, err := s.Applications.GetByID(ctx, id)
	if err != nil {
		return models.PassApplication{}, err
	}
	if app.Status == models.PassCancelled {
		return models.PassApplication{}, domain.ValidationError{Field: "status", Msg: "Cannot update a cancelled application"}
	}

	var code string
	var from, until time.Time
	if in.Status == models.PassApproved && app.PassCode == "" {
		now := s.now()
		code = utils.PassCode(now)
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		until = from.AddDate(0, app.ValidityMonths, 0)
		app.PassCode = code
		app.ValidFrom = &from
		app.ValidUntil = &until
	}
	if err := s.Applications.Decide(ctx, id, in.Status, strings.TrimSpace(in.Remarks), code, from, until); err != nil {
		return models.PassApplication{}, err
	}
	app.Status = in.Status
	app.AdminRemarks = strings.TrimSpace(in.Remarks)

	logger.Event(s.RequestID, "passes", "update_status", fmt.Sprintf("application_id=%d status=%s", id, in.Status))
	body := fmt.Sprintf("Your pass application #%d is now %s", id, in.Status)
	if app.PassCode != "" && in.Status == models.PassApproved {
		body += fmt.Sprintf(". Pass %s valid until %s", app.PassCode, utils.FormatDate(*app.ValidUntil))
	}
	notifyUser(ctx, s.Events, s.Users, s.RequestID, events.TopicPassStatusChanged, app.UserID, app.Mobile, "Pass application update", body)
	return app.Masked(), nil
}

// CheckPass reports whether an issued pass is approved and inside its validity window.
func (s PassService) CheckPass(ctx context.Context, code string) (models.PassCheck, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.PassCheck{}, domain.ValidationError{Field: "code", Msg: "Pass number is required"}
	}
	app, err := s.Applications.FindByCode(ctx, code)
	if err != nil {
		return models.PassCheck{}, err
	}
	if app.Status != models.PassApproved {
		return models.PassCheck{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("Pass is %s", app.Status)}
	}
	if app.ValidFrom == nil || app.ValidUntil == nil {
		return models.PassCheck{}, domain.ValidationError{Msg: "Pass has expired or is not yet valid"}
	}
	now := s.now()
	if now.Before(*app.ValidFrom) || !now.Before(*app.ValidUntil) {
		return models.PassCheck{}, domain.ValidationError{Msg: "Pass has expired or is not yet valid"}
	}
	return models.PassCheck{
		PassCode:   app.PassCode,
		Category:   app.Category,
		RouteID:    app.RouteID,
		ValidFrom:  *app.ValidFrom,
		ValidUntil: *app.ValidUntil,
		Valid:      true,
	}, nil
}

func (s PassService) owned(ctx context.Context, rc domain.RequestContext, id int64, verb string) (models.PassApplication, error) {
	if id <= 0 {
		return models.PassApplication{}, domain.ValidationError{Field: "id", Msg: "Application ID is required"}
	}
	app, err := s.Applications.GetByID(ctx, id)
	if err != nil {
		return models.PassApplication{}, err
	}
	if app.UserID != rc.UserID && !rc.IsAdmin() {
		return models.PassApplication{}, domain.ForbiddenError{Msg: fmt.Sprintf("Not authorized to %s this application", verb)}
	}
	return app, nil
}

func (s PassService) sendOTP(ctx context.Context, app models.PassApplication) error {
	code, err := otp.NewCode()
	if err != nil {
		return err
	}
	ttl := s.OTPTTL
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	if err := s.otpStore().Save(ctx, otp.Key(otpPurpose, app.ID), code, ttl); err != nil {
		return domain.InternalError{Msg: "store otp", Err: err}
	}
	if s.Events != nil {
		n := events.Notification{
			UserID:  app.UserID,
			Mobile:  app.Mobile,
			Subject: "Pass application OTP",
			Body:    fmt.Sprintf("Your OTP for pass application #%d is %s. It expires in %s.", app.ID, code, ttl),
		}
		if err := s.Events.Publish(ctx, events.TopicPassOTPIssued, n); err != nil {
			logger.Error(s.RequestID, "events", events.TopicPassOTPIssued, err)
		}
	}
	return nil
}

var fallbackOTPStore = otp.NewMemoryStore(0)

func (s PassService) otpStore() otp.Store {
	if s.OTP != nil {
		return s.OTP
	}
	return fallbackOTPStore
}

func maskAll(apps []models.PassApplication) []models.PassApplication {
	out := make([]models.PassApplication, len(apps))
	for i, a := range apps {
		out[i] = a.Masked()
	}
	return out
}
