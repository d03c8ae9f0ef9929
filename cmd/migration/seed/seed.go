package seed

import (
	"time"

	"dutydesk/config"
	"dutydesk/internal/logger"
	. "dutydesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	if err := seedMembers(db, log); err != nil {
		return err
	}
	if err := seedEquipment(db, log); err != nil {
		return err
	}

	return nil
}

func seedMembers(db *gorm.DB, log logger.Logger) error {
	members := []Member{
		{
			MemberID: "1001",
			Name:     "Walter Kowalski",
			Phone:    "555-0101",
			Email:    "walt.kowalski@example.com",
			JoinDate: time.Date(1998, 4, 12, 0, 0, 0, 0, time.UTC),
			Status:   MemberStatusActive,
			Group:    MemberGroupLegion,
		},
		{
			MemberID: "1002",
			Name:     "Doris Chen",
			Phone:    "555-0102",
			JoinDate: time.Date(2005, 9, 3, 0, 0, 0, 0, time.UTC),
			Status:   MemberStatusActive,
			Group:    MemberGroupAuxiliary,
		},
		{
			MemberID: "1003",
			Name:     "Ray Delgado",
			JoinDate: time.Date(2015, 1, 20, 0, 0, 0, 0, time.UTC),
			Status:   MemberStatusActive,
			Group:    MemberGroupRiders,
		},
	}

	for _, member := range members {
		var existing Member
		if err := db.First(&existing, "member_id = ?", member.MemberID).Error; err == nil {
			log.Info("Member already exists", "memberId", member.MemberID)
			continue
		}
		log.Info("Seeding member", "memberId", member.MemberID, "name", member.Name)
		if err := db.Create(&member).Error; err != nil {
			log.Er("failed to create member", err, "memberId", member.MemberID)
		}
	}

	return nil
}

func seedEquipment(db *gorm.DB, log logger.Logger) error {
	equipment := []Equipment{
		{
			Name:          "Folding Table (6ft)",
			Description:   "Plastic folding banquet table",
			Category:      "Furniture",
			DepositAmount: decimal.NewFromInt(20),
		},
		{
			Name:          "PA Speaker",
			Description:   "Powered speaker with stand and XLR cable",
			Category:      "Audio",
			SerialNumber:  stringPtr("PA-2019-044"),
			DepositAmount: decimal.NewFromInt(100),
		},
		{
			Name:          "Coffee Urn (100 cup)",
			Category:      "Kitchen",
			Notes:         stringPtr("Descale after every third use"),
			DepositAmount: decimal.NewFromInt(40),
		},
	}

	for _, item := range equipment {
		var existing Equipment
		if err := db.First(&existing, "name = ?", item.Name).Error; err == nil {
			log.Info("Equipment already exists", "name", item.Name)
			continue
		}
		log.Info("Seeding equipment", "name", item.Name)
		if err := db.Create(&item).Error; err != nil {
			log.Er("failed to create equipment", err, "name", item.Name)
		}
	}

	return nil
}
