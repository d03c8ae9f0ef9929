package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"dutydesk/internal/database"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"
	"dutydesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransferKindEquipment = "equipment"
	TransferKindCheckouts = "checkouts"
	TransferKindMembers   = "members"
)

var (
	equipmentHeader = []string{
		"id", "name", "description", "imageUri", "status", "category",
		"serialNumber", "notes", "addedDate", "depositAmount",
	}
	checkoutHeader = []string{
		"id", "equipmentId", "memberId", "checkoutDate", "expectedReturnDate",
		"returnDate", "checkoutNotes", "returnNotes", "dutyOfficer",
		"depositCollected", "depositReturned",
	}
	memberHeader = []string{
		"id", "memberId", "name", "phone", "email", "address", "notes",
		"joinDate", "branch", "status", "group",
	}
)

// SkippedRow records a CSV line that could not be imported and why. Imports
// are forgiving: bad rows are reported, not fatal.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	Kind     string       `json:"kind"`
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
}

// TransferService moves registry data in and out of the system as CSV. An
// import replaces the target registry wholesale; the other registries are
// left untouched.
type TransferService struct {
	db          database.DB
	repos       repositories.Repository
	transaction *TransactionService
	log         logger.Logger
}

func NewTransferService(
	db database.DB,
	repos repositories.Repository,
	transaction *TransactionService,
) *TransferService {
	return &TransferService{
		db:          db,
		repos:       repos,
		transaction: transaction,
		log:         logger.New("transferService"),
	}
}

func (s *TransferService) Export(ctx context.Context, kind string) (string, error) {
	log := s.log.Function("Export")

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	var err error
	switch kind {
	case TransferKindEquipment:
		err = s.exportEquipment(ctx, writer)
	case TransferKindCheckouts:
		err = s.exportCheckouts(ctx, writer)
	case TransferKindMembers:
		err = s.exportMembers(ctx, writer)
	default:
		return "", log.ErrorWithType(fmt.Errorf("unknown transfer kind: %s", kind), "unknown transfer kind")
	}
	if err != nil {
		return "", err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", log.Err("failed to write csv", err, "kind", kind)
	}

	log.Info("Export complete", "kind", kind)
	return buf.String(), nil
}

func (s *TransferService) exportEquipment(ctx context.Context, writer *csv.Writer) error {
	log := s.log.Function("exportEquipment")

	equipment, err := s.repos.Equipment.ListEquipment(ctx, s.db.SQL)
	if err != nil {
		return log.Err("failed to list equipment", err)
	}

	if err := writer.Write(equipmentHeader); err != nil {
		return err
	}
	for _, item := range equipment {
		if err := writer.Write(equipmentRow(item)); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransferService) exportCheckouts(ctx context.Context, writer *csv.Writer) error {
	log := s.log.Function("exportCheckouts")

	records, err := s.repos.Equipment.ListAllCheckoutRecords(ctx, s.db.SQL)
	if err != nil {
		return log.Err("failed to list checkout records", err)
	}

	if err := writer.Write(checkoutHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(checkoutRow(record)); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransferService) exportMembers(ctx context.Context, writer *csv.Writer) error {
	log := s.log.Function("exportMembers")

	members, err := s.repos.Member.ListMembers(ctx, s.db.SQL)
	if err != nil {
		return log.Err("failed to list members", err)
	}

	if err := writer.Write(memberHeader); err != nil {
		return err
	}
	for _, member := range members {
		if err := writer.Write(memberRow(member)); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransferService) Import(
	ctx context.Context,
	kind string,
	data string,
) (*ImportReport, error) {
	log := s.log.Function("Import")

	rows, err := readRows(data)
	if err != nil {
		return nil, log.Err("failed to parse csv", err, "kind", kind)
	}

	var report *ImportReport
	switch kind {
	case TransferKindEquipment:
		report, err = s.importEquipment(ctx, rows)
	case TransferKindCheckouts:
		report, err = s.importCheckouts(ctx, rows)
	case TransferKindMembers:
		report, err = s.importMembers(ctx, rows)
	default:
		return nil, log.ErrorWithType(fmt.Errorf("unknown transfer kind: %s", kind), "unknown transfer kind")
	}
	if err != nil {
		return nil, err
	}

	log.Info("Import complete",
		"kind", kind,
		"imported", report.Imported,
		"skipped", len(report.Skipped),
	)

	return report, nil
}

func (s *TransferService) importEquipment(
	ctx context.Context,
	rows []csvRow,
) (*ImportReport, error) {
	report := &ImportReport{Kind: TransferKindEquipment}

	equipment := make([]*Equipment, 0, len(rows))
	ids := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		item, reason := parseEquipmentRow(row.fields)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedRow{Line: row.line, Reason: reason})
			continue
		}
		equipment = append(equipment, item)
		ids[item.ID] = true
	}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		// Checkout records survive only when their equipment does.
		records, err := s.repos.Equipment.ListAllCheckoutRecords(ctx, tx)
		if err != nil {
			return err
		}
		kept := make([]*CheckoutRecord, 0, len(records))
		for _, record := range records {
			if ids[record.EquipmentID] {
				kept = append(kept, record)
			}
		}

		return s.repos.Equipment.ReplaceAll(ctx, tx, equipment, kept)
	})
	if err != nil {
		return nil, err
	}

	report.Imported = len(equipment)
	return report, nil
}

func (s *TransferService) importCheckouts(
	ctx context.Context,
	rows []csvRow,
) (*ImportReport, error) {
	report := &ImportReport{Kind: TransferKindCheckouts}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		equipment, err := s.repos.Equipment.ListEquipment(ctx, tx)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(equipment))
		for _, item := range equipment {
			known[item.ID] = true
		}

		records := make([]*CheckoutRecord, 0, len(rows))
		for _, row := range rows {
			record, reason := parseCheckoutRow(row.fields)
			if reason == "" && !known[record.EquipmentID] {
				reason = "unknown equipmentId"
			}
			if reason != "" {
				report.Skipped = append(report.Skipped, SkippedRow{Line: row.line, Reason: reason})
				continue
			}
			records = append(records, record)
		}

		if err := s.repos.Equipment.ReplaceAll(ctx, tx, equipment, records); err != nil {
			return err
		}

		report.Imported = len(records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (s *TransferService) importMembers(
	ctx context.Context,
	rows []csvRow,
) (*ImportReport, error) {
	report := &ImportReport{Kind: TransferKindMembers}

	members := make([]*Member, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		member, reason := parseMemberRow(row.fields)
		if reason == "" && seen[member.MemberID] {
			reason = "duplicate memberId"
		}
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedRow{Line: row.line, Reason: reason})
			continue
		}
		seen[member.MemberID] = true
		members = append(members, member)
	}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return s.repos.Member.ReplaceAll(ctx, tx, members)
	})
	if err != nil {
		return nil, err
	}

	report.Imported = len(members)
	return report, nil
}

type csvRow struct {
	line   int
	fields []string
}

// readRows parses the CSV body, tolerating ragged rows and skipping the
// header line. Line numbers are 1-based and include the header.
func readRows(data string) ([]csvRow, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]csvRow, 0, len(records))
	for i, fields := range records {
		if i == 0 {
			continue
		}
		rows = append(rows, csvRow{line: i + 1, fields: fields})
	}

	return rows, nil
}

// equipmentRow and parseEquipmentRow are a matched pair: an exported row must
// import back to an equal record.
func equipmentRow(item *Equipment) []string {
	return []string{
		item.ID.String(),
		item.Name,
		item.Description,
		item.ImageURI,
		string(item.Status),
		item.Category,
		stringOrEmpty(item.SerialNumber),
		stringOrEmpty(item.Notes),
		item.CreatedAt.Format(time.RFC3339),
		item.DepositAmount.StringFixed(2),
	}
}

func checkoutRow(record *CheckoutRecord) []string {
	return []string{
		record.ID.String(),
		record.EquipmentID.String(),
		record.MemberID,
		record.CheckoutDate.Format(time.RFC3339),
		record.ExpectedReturnDate.Format(time.RFC3339),
		timeOrEmpty(record.ReturnDate),
		record.CheckoutNotes,
		record.ReturnNotes,
		record.DutyOfficer,
		record.DepositCollected.StringFixed(2),
		boolOrEmpty(record.DepositReturned),
	}
}

func memberRow(member *Member) []string {
	return []string{
		member.ID.String(),
		member.MemberID,
		member.Name,
		member.Phone,
		member.Email,
		member.Address,
		member.Notes,
		member.JoinDate.Format(time.RFC3339),
		member.Branch,
		string(member.Status),
		string(member.Group),
	}
}

func parseEquipmentRow(fields []string) (*Equipment, string) {
	if len(fields) < len(equipmentHeader) {
		return nil, fmt.Sprintf("expected %d fields, got %d", len(equipmentHeader), len(fields))
	}

	if strings.TrimSpace(fields[1]) == "" {
		return nil, "name is required"
	}

	item := &Equipment{
		Name:        strings.TrimSpace(fields[1]),
		Description: fields[2],
		ImageURI:    fields[3],
		Category:    fields[5],
	}

	if id, err := uuid.Parse(fields[0]); err == nil {
		item.ID = id
	}
	if serial := strings.TrimSpace(fields[6]); serial != "" {
		item.SerialNumber = &serial
	}
	if notes := fields[7]; notes != "" {
		item.Notes = &notes
	}
	if added, err := parseDate(fields[8]); err == nil {
		item.CreatedAt = added
	}
	if fields[9] != "" {
		deposit, err := decimal.NewFromString(fields[9])
		if err != nil || deposit.IsNegative() {
			return nil, "invalid depositAmount"
		}
		item.DepositAmount = deposit
	}

	return item, ""
}

func parseCheckoutRow(fields []string) (*CheckoutRecord, string) {
	if len(fields) < len(checkoutHeader) {
		return nil, fmt.Sprintf("expected %d fields, got %d", len(checkoutHeader), len(fields))
	}

	equipmentID, err := uuid.Parse(fields[1])
	if err != nil {
		return nil, "invalid equipmentId"
	}
	if strings.TrimSpace(fields[2]) == "" {
		return nil, "memberId is required"
	}

	checkoutDate, err := parseDate(fields[3])
	if err != nil {
		return nil, "invalid checkoutDate"
	}
	expectedReturn, err := parseDate(fields[4])
	if err != nil {
		return nil, "invalid expectedReturnDate"
	}
	if expectedReturn.Before(checkoutDate) {
		return nil, "expectedReturnDate before checkoutDate"
	}

	record := &CheckoutRecord{
		EquipmentID:        equipmentID,
		MemberID:           strings.TrimSpace(fields[2]),
		CheckoutDate:       checkoutDate,
		ExpectedReturnDate: expectedReturn,
		CheckoutNotes:      fields[6],
		ReturnNotes:        fields[7],
		DutyOfficer:        fields[8],
	}

	if id, err := uuid.Parse(fields[0]); err == nil {
		record.ID = id
	}
	if fields[5] != "" {
		returned, err := parseDate(fields[5])
		if err != nil {
			return nil, "invalid returnDate"
		}
		record.ReturnDate = &returned
	}
	if fields[9] != "" {
		deposit, err := decimal.NewFromString(fields[9])
		if err != nil {
			return nil, "invalid depositCollected"
		}
		record.DepositCollected = deposit
	}
	if fields[10] != "" {
		returned := strings.EqualFold(fields[10], "true") || fields[10] == "1"
		record.DepositReturned = &returned
	}

	return record, ""
}

// parseMemberRow tolerates legacy exports: anything past memberId and name is
// optional and defaulted.
func parseMemberRow(fields []string) (*Member, string) {
	if len(fields) < 3 {
		return nil, "expected at least id, memberId, and name"
	}

	memberID := strings.TrimSpace(fields[1])
	name := strings.TrimSpace(fields[2])
	if memberID == "" {
		return nil, "memberId is required"
	}
	if name == "" {
		return nil, "name is required"
	}

	member := &Member{
		MemberID: memberID,
		Name:     name,
	}

	if id, err := uuid.Parse(fields[0]); err == nil {
		member.ID = id
	}
	if len(fields) > 3 {
		member.Phone = fields[3]
	}
	if len(fields) > 4 {
		member.Email = fields[4]
	}
	if len(fields) > 5 {
		member.Address = fields[5]
	}
	if len(fields) > 6 {
		member.Notes = fields[6]
	}
	if len(fields) > 7 && fields[7] != "" {
		if joined, err := parseDate(fields[7]); err == nil {
			member.JoinDate = joined
		}
	}
	if len(fields) > 8 {
		member.Branch = fields[8]
	}
	var status, group string
	if len(fields) > 9 {
		status = strings.TrimSpace(fields[9])
	}
	if len(fields) > 10 {
		group = strings.TrimSpace(fields[10])
	}
	member.Status = NormalizeMemberStatus(status)
	member.Group = NormalizeMemberGroup(group)

	if member.Email == "" {
		member.Email = MemberEmailPlaceholder
	}

	return member, ""
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func timeOrEmpty(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(time.RFC3339)
}

func boolOrEmpty(value *bool) string {
	if value == nil {
		return ""
	}
	if *value {
		return "true"
	}
	return "false"
}
