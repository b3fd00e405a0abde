package quality

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"wotrack/internal/audit"
	"wotrack/internal/database"
	"wotrack/internal/models"
	"wotrack/internal/response"
	"wotrack/internal/validation"
)

const ncrColumns = `id,title,COALESCE(description,''),COALESCE(work_order_id,''),COALESCE(item_code,''),
	COALESCE(defect_type,''),severity,status,COALESCE(root_cause,''),COALESCE(corrective_action,''),
	COALESCE(created_by,''),created_at,resolved_at`

func scanNCR(scan func(dest ...interface{}) error) (models.NCR, error) {
	var n models.NCR
	var ra sql.NullString
	err := scan(&n.ID, &n.Title, &n.Description, &n.WorkOrderID, &n.ItemCode,
		&n.DefectType, &n.Severity, &n.Status, &n.RootCause, &n.CorrectiveAction,
		&n.CreatedBy, &n.CreatedAt, &ra)
	if err != nil {
		return n, err
	}
	n.ResolvedAt = database.SP(ra)
	return n, nil
}

// ListNCRs handles GET /api/v1/ncrs with optional ?work_order_id= and
// ?status= filters.
func (h *Handler) ListNCRs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	query := "SELECT " + ncrColumns + " FROM ncrs"
	var conds []string
	var args []interface{}
	if wo := r.URL.Query().Get("work_order_id"); wo != "" {
		conds = append(conds, "work_order_id=?")
		args = append(args, wo)
	}
	if st := r.URL.Query().Get("status"); st != "" {
		conds = append(conds, "status=?")
		args = append(args, st)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	ncrs := []models.NCR{}
	for rows.Next() {
		n, err := scanNCR(rows.Scan)
		if err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		ncrs = append(ncrs, n)
	}
	if err := rows.Err(); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	total := len(ncrs)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	response.JSONMeta(w, ncrs[start:end], total, page, limit)
}

// GetNCR handles GET /api/v1/ncrs/:id.
func (h *Handler) GetNCR(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.getNCR(id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}
	response.JSON(w, n)
}

func (h *Handler) getNCR(id string) (models.NCR, error) {
	row := h.DB.QueryRow("SELECT "+ncrColumns+" FROM ncrs WHERE id=?", id)
	return scanNCR(row.Scan)
}

// CreateNCR handles POST /api/v1/ncrs.
func (h *Handler) CreateNCR(w http.ResponseWriter, r *http.Request) {
	var n models.NCR
	if err := response.DecodeBody(r, &n); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", n.Title)
	validation.ValidateMaxLength(ve, "title", n.Title, 200)
	if n.Severity != "" {
		validation.ValidateEnum(ve, "severity", n.Severity, validation.ValidNCRSeverities)
	}
	if n.Status != "" {
		validation.ValidateEnum(ve, "status", n.Status, validation.ValidNCRStatuses)
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	if n.Severity == "" {
		n.Severity = "minor"
	}
	if n.Status == "" {
		n.Status = "open"
	}
	n.ID = h.NextID("NCR", "ncrs", 3)
	n.CreatedBy = audit.Actor(r)
	_, err := h.DB.Exec(`INSERT INTO ncrs (id,title,description,work_order_id,item_code,defect_type,severity,status,root_cause,corrective_action,created_by)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		n.ID, n.Title, n.Description, n.WorkOrderID, n.ItemCode, n.DefectType, n.Severity, n.Status, n.RootCause, n.CorrectiveAction, n.CreatedBy)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "created", "ncr", n.ID, "NCR "+n.ID+": "+n.Title)
	created, _ := h.getNCR(n.ID)
	response.JSON(w, created)
}

// UpdateNCR handles PUT /api/v1/ncrs/:id. Moving into resolved or closed
// stamps resolved_at.
func (h *Handler) UpdateNCR(w http.ResponseWriter, r *http.Request, id string) {
	current, err := h.getNCR(id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}

	var body struct {
		Title            *string `json:"title"`
		Description      *string `json:"description"`
		DefectType       *string `json:"defect_type"`
		Severity         *string `json:"severity"`
		Status           *string `json:"status"`
		RootCause        *string `json:"root_cause"`
		CorrectiveAction *string `json:"corrective_action"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&current.Title, body.Title)
	apply(&current.Description, body.Description)
	apply(&current.DefectType, body.DefectType)
	apply(&current.Severity, body.Severity)
	apply(&current.Status, body.Status)
	apply(&current.RootCause, body.RootCause)
	apply(&current.CorrectiveAction, body.CorrectiveAction)

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", current.Title)
	validation.ValidateEnum(ve, "severity", current.Severity, validation.ValidNCRSeverities)
	validation.ValidateEnum(ve, "status", current.Status, validation.ValidNCRStatuses)
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	resolvedAt := current.ResolvedAt
	if (current.Status == "resolved" || current.Status == "closed") && resolvedAt == nil {
		now := database.Now()
		resolvedAt = &now
	}

	_, err = h.DB.Exec(`UPDATE ncrs SET title=?,description=?,defect_type=?,severity=?,status=?,root_cause=?,corrective_action=?,resolved_at=? WHERE id=?`,
		current.Title, current.Description, current.DefectType, current.Severity, current.Status,
		current.RootCause, current.CorrectiveAction, resolvedAt, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "updated", "ncr", id, "NCR "+id+" status="+current.Status)
	updated, _ := h.getNCR(id)
	response.JSON(w, updated)
}

// Similar handles GET /api/v1/ncrs/:id/similar. Surfaces earlier reports
// within the repeat window that share this NCR's root cause or item, so a
// reviewer can spot a recurring defect before closing the report. Root
// causes match on the trimmed, lowercased text.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.getNCR(id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}

	rootCause := strings.ToLower(strings.TrimSpace(n.RootCause))
	days := h.RepeatWindowDays
	if days <= 0 {
		days = 90
	}
	window := "-" + strconv.Itoa(days) + " days"

	query := "SELECT " + ncrColumns + ` FROM ncrs
		WHERE id != ? AND created_at >= datetime('now', ?)`
	args := []interface{}{id, window}
	switch {
	case rootCause != "" && n.ItemCode != "":
		query += " AND (LOWER(TRIM(root_cause)) = ? OR item_code = ?)"
		args = append(args, rootCause, n.ItemCode)
	case rootCause != "":
		query += " AND LOWER(TRIM(root_cause)) = ?"
		args = append(args, rootCause)
	case n.ItemCode != "":
		query += " AND item_code = ?"
		args = append(args, n.ItemCode)
	default:
		response.JSON(w, []models.NCR{})
		return
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	matches := []models.NCR{}
	for rows.Next() {
		m, err := scanNCR(rows.Scan)
		if err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		matches = append(matches, m)
	}
	response.JSON(w, matches)
}
