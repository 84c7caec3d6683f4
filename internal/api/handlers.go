package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cvd-risk-server/internal/auditlog"
	"github.com/cvd-risk-server/internal/domain"
	"github.com/cvd-risk-server/internal/service"
	"github.com/cvd-risk-server/internal/session"
)

// CalculateResponse is the body returned by the calculate endpoint.
type CalculateResponse struct {
	SessionID string                   `json:"session_id"`
	Method    domain.Method            `json:"method"`
	Results   *domain.AggregatedResult `json:"results"`
}

// CreateProfileRequest is the body accepted by the profile creation
// endpoint.
type CreateProfileRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Record      domain.RawPatientRecord `json:"record"`
}

// parseMethod maps the URL segment to a method selector. The route form
// uses hyphens where the method enum uses underscores.
func parseMethod(raw string) (domain.Method, bool) {
	m := domain.Method(strings.ReplaceAll(strings.ToLower(raw), "-", "_"))
	if !m.IsValid() {
		return "", false
	}
	return m, true
}

func (s *Server) abortError(c *gin.Context, status int, code, message string, details ...string) {
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, c.GetString("correlation_id"), details...))
}

// handleCalculate runs a risk assessment on the posted patient record.
func (s *Server) handleCalculate(c *gin.Context) {
	method, ok := parseMethod(c.Param("method"))
	if !ok {
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeInvalidMethod,
			"Unknown scoring method: "+c.Param("method"))
		return
	}

	var raw domain.RawPatientRecord
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Request body is not valid JSON", err.Error())
		return
	}

	result, err := s.engine.Assess(&service.AssessParams{Method: method, Record: &raw})
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
				"Patient record failed validation", verrs.Messages()...)
			return
		}
		if errors.Is(err, domain.ErrInvalidMethod) {
			s.abortError(c, http.StatusBadRequest, domain.ErrCodeInvalidMethod, err.Error())
			return
		}
		s.logger.WithError(err).Error("Assessment failed")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "Assessment failed")
		return
	}

	sess := session.New(method, result.Record, result.Results)
	if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
		// The assessment itself succeeded; report retrieval just won't work.
		s.logger.WithError(err).Warn("Failed to save assessment session")
	}

	s.recordAudit(c, sess)

	c.JSON(http.StatusOK, CalculateResponse{
		SessionID: sess.ID,
		Method:    method,
		Results:   result.Results,
	})
}

// recordAudit writes the audit trail entry for a completed assessment.
func (s *Server) recordAudit(c *gin.Context, sess *session.Session) {
	entry := &auditlog.Entry{
		SessionID:      sess.ID,
		CorrelationID:  c.GetString("correlation_id"),
		Method:         sess.Method.String(),
		PatientAge:     sess.Record.Age,
		PatientSex:     sess.Record.Sex.String(),
		MethodsApplied: len(sess.Results.Available()),
		WarningCount:   len(sess.Results.Warnings),
		ClientIP:       c.ClientIP(),
	}
	if sess.Results.Overall != nil {
		percent := sess.Results.Overall.Percent
		entry.OverallPercent = &percent
		entry.OverallCategory = sess.Results.Overall.Category.String()
	}

	if err := s.audit.Record(c.Request.Context(), entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record audit entry")
	}
}

// handleListProfiles lists stored profiles, or the built-in table in lite
// mode.
func (s *Server) handleListProfiles(c *gin.Context) {
	if s.profiles == nil {
		c.JSON(http.StatusOK, gin.H{"profiles": builtinProfiles()})
		return
	}

	records, err := s.profiles.ListProfiles(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list profiles")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to list profiles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": records})
}

// handleGetProfile returns one profile by name.
func (s *Server) handleGetProfile(c *gin.Context) {
	name := c.Param("name")

	if s.profiles == nil {
		for _, pr := range builtinProfiles() {
			if pr.Profile.Name == name {
				c.JSON(http.StatusOK, pr)
				return
			}
		}
		s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Profile not found: "+name)
		return
	}

	pr, err := s.profiles.GetProfile(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Profile not found: "+name)
			return
		}
		s.logger.WithError(err).Error("Failed to get profile")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to get profile")
		return
	}
	c.JSON(http.StatusOK, pr)
}

// handleCreateProfile stores a new named profile.
func (s *Server) handleCreateProfile(c *gin.Context) {
	if s.profiles == nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase,
			"Profile storage requires full mode")
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Request body is not valid JSON", err.Error())
		return
	}

	record, _, err := s.engine.ValidateRecord(&req.Record)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
				"Patient record failed validation", verrs.Messages()...)
			return
		}
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation, err.Error())
		return
	}

	profile, err := s.profiles.CreateProfile(c.Request.Context(), req.Name, req.Description, record)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			s.abortError(c, http.StatusConflict, domain.ErrCodeValidation,
				"Profile already exists: "+req.Name)
			return
		}
		s.logger.WithError(err).Error("Failed to create profile")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// handleDeleteProfile soft-deletes a stored profile by numeric ID.
func (s *Server) handleDeleteProfile(c *gin.Context) {
	if s.profiles == nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase,
			"Profile storage requires full mode")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Profile ID must be numeric")
		return
	}

	if err := s.profiles.DeleteProfile(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Profile not found")
			return
		}
		s.logger.WithError(err).Error("Failed to delete profile")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to delete profile")
		return
	}

	c.Status(http.StatusNoContent)
}

// handleProfileHistory returns the dated measurement history of a profile.
func (s *Server) handleProfileHistory(c *gin.Context) {
	if s.profiles == nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase,
			"Profile storage requires full mode")
		return
	}

	name := c.Param("name")
	history, err := s.profiles.GetHistory(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Profile not found: "+name)
			return
		}
		s.logger.WithError(err).Error("Failed to get profile history")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to get profile history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// handleAddMeasurement appends a measurement to a stored profile.
func (s *Server) handleAddMeasurement(c *gin.Context) {
	if s.profiles == nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase,
			"Profile storage requires full mode")
		return
	}

	var raw domain.RawPatientRecord
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Request body is not valid JSON", err.Error())
		return
	}

	record, _, err := s.engine.ValidateRecord(&raw)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation,
				"Patient record failed validation", verrs.Messages()...)
			return
		}
		s.abortError(c, http.StatusBadRequest, domain.ErrCodeValidation, err.Error())
		return
	}

	name := c.Param("name")
	if err := s.profiles.AddMeasurement(c.Request.Context(), name, record); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Profile not found: "+name)
			return
		}
		s.logger.WithError(err).Error("Failed to add measurement")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to add measurement")
		return
	}

	c.Status(http.StatusCreated)
}

// handleGetReport renders the stored session as a clinical report.
func (s *Server) handleGetReport(c *gin.Context) {
	id := c.Param("session_id")

	sess, err := s.sessions.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound,
				"Session not found or expired: "+id)
			return
		}
		s.logger.WithError(err).Error("Failed to load session")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeSessionStore, "Failed to load session")
		return
	}

	c.JSON(http.StatusOK, s.reports.Build(sess))
}

// handleListAudit lists audit entries with pagination.
func (s *Server) handleListAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := s.audit.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list audit entries")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to list audit entries")
		return
	}

	total, err := s.audit.Count(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to count audit entries")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to count audit entries")
		return
	}

	if entries == nil {
		entries = []*auditlog.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleExportAudit streams the complete audit trail as a JSON document.
func (s *Server) handleExportAudit(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="audit-export.json"`)
	c.Status(http.StatusOK)

	// The export streams directly to the response, so failures past this
	// point can only be logged, not reported to the client.
	if err := s.audit.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		s.logger.WithError(err).Error("Failed to export audit entries")
	}
}

// handleGetAuditEntry returns the audit entry recorded for one assessment
// session. Audit entries outlive their sessions, so this works after the
// session TTL has passed.
func (s *Server) handleGetAuditEntry(c *gin.Context) {
	id := c.Param("session_id")

	entry, err := s.audit.GetBySession(c.Request.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load audit entry")
		s.abortError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to load audit entry")
		return
	}
	if entry == nil {
		s.abortError(c, http.StatusNotFound, domain.ErrCodeNotFound, "No audit entry for session: "+id)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// builtinProfiles adapts the built-in profile table to the stored-profile
// response shape used in full mode.
func builtinProfiles() []*domain.ProfileRecord {
	seeds := domain.DefaultProfiles()
	records := make([]*domain.ProfileRecord, len(seeds))
	for i, seed := range seeds {
		records[i] = &domain.ProfileRecord{
			Profile: &domain.Profile{
				ID:          int64(i + 1),
				Name:        seed.Name,
				Description: seed.Description,
				IsActive:    true,
			},
			Record: seed.Record,
		}
	}
	return records
}
