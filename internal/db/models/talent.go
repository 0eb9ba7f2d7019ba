package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// TalentWalletField is the column holding the wallet that receives deposits
	TalentWalletField = "wallet_address"
	// TalentPresaleField is the column linking a talent to its presale
	TalentPresaleField = "presale_id"
)

// TalentStatus represents the career tier of a talent
type TalentStatus int

// Talent status constants
const (
	// TalentStatusRising is the default tier for new talents
	TalentStatusRising TalentStatus = iota
	// TalentStatusBreakout is the middle tier
	TalentStatusBreakout
	// TalentStatusAList is the top tier
	TalentStatusAList
)

var talentStatusNames = []string{
	"Rising",
	"Breakout",
	"A-List",
}

// Talent is a creator that can run a presale
type Talent struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Handle        string       `json:"handle" gorm:"not null;uniqueIndex"`
	Name          string       `json:"name" gorm:"not null"`
	Logline       string       `json:"logline,omitempty" gorm:"type:text"`
	WalletAddress *string      `json:"wallet_address,omitempty" gorm:"type:varchar(44)"`
	PresaleID     *string      `json:"presale_id,omitempty" gorm:"type:varchar(36);index"`
	Status        TalentStatus `json:"status" gorm:"not null;default:0"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// BeforeCreate assigns the talent ID
func (t *Talent) BeforeCreate(_ *gorm.DB) error {
	newID(&t.ID)
	return nil
}

func (s TalentStatus) String() string {
	if int(s) < 0 || int(s) >= len(talentStatusNames) {
		return "unknown"
	}
	return talentStatusNames[s]
}

// ParseTalentStatus converts a string representation of a talent status to TalentStatus
func ParseTalentStatus(str string) (TalentStatus, error) {
	for i, status := range talentStatusNames {
		if status == str {
			return TalentStatus(i), nil
		}
	}
	return TalentStatusRising, fmt.Errorf("invalid talent status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for TalentStatus
func (s TalentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for TalentStatus
func (s *TalentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseTalentStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}
