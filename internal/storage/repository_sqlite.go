package storage

import (
	"time"

	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetCharacterByID(id uint) (*Character, error) {
	var c Character
	if err := r.db.Preload("Spells").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sqliteRepository) GetCharactersByCampaign(campaignID uint) ([]Character, error) {
	var chars []Character
	if err := r.db.Preload("Spells").Where("campaign_id = ?", campaignID).Order("name").Find(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}

func (r *sqliteRepository) SaveCharacter(c *Character) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
}

func (r *sqliteRepository) CreateEncounter(rec *EncounterRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetEncounterByUUID(uuid string) (*EncounterRecord, error) {
	var rec EncounterRecord
	if err := r.db.Where("encounter_uuid = ?", uuid).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) UpdateEncounter(rec *EncounterRecord) error {
	return r.db.Save(rec).Error
}

func (r *sqliteRepository) AppendActionLog(encounterRecordID uint, entries []ActionLogRecord) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].EncounterRecordID = encounterRecordID
	}
	return r.db.Create(&entries).Error
}

func (r *sqliteRepository) FindStaleEncounters(now time.Time, idleFor time.Duration) ([]EncounterRecord, error) {
	cutoff := now.Add(-idleFor)
	var recs []EncounterRecord
	if err := r.db.Where("status IN ? AND last_action_at < ?", []string{"preparing", "active"}, cutoff).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *sqliteRepository) UpsertUser(email, uuid, name string) error {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			u = User{Email: email, PlayerUUID: uuid, DisplayName: name}
		} else {
			return err
		}
	}
	u.DisplayName = name
	u.PlayerUUID = uuid
	return r.db.Save(&u).Error
}

func (r *sqliteRepository) GetUserByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &User{Email: email}, nil
		}
		return nil, err
	}
	return &u, nil
}
