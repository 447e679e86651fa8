package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/adelacruz/artifacts-go/internal/domain/character"
	"github.com/adelacruz/artifacts-go/internal/domain/game"
	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

// characterPayload mirrors the API's character schema. Only the fields the
// controller reads are declared.
type characterPayload struct {
	Name string `json:"name"`

	X int `json:"x"`
	Y int `json:"y"`

	Level          int `json:"level"`
	XP             int `json:"xp"`
	MaxXP          int `json:"max_xp"`
	Gold           int `json:"gold"`
	HP             int `json:"hp"`
	MaxHP          int `json:"max_hp"`
	Haste          int `json:"haste"`
	CriticalStrike int `json:"critical_strike"`

	AttackFire  int `json:"attack_fire"`
	AttackEarth int `json:"attack_earth"`
	AttackWater int `json:"attack_water"`
	AttackAir   int `json:"attack_air"`
	DmgFire     int `json:"dmg_fire"`
	DmgEarth    int `json:"dmg_earth"`
	DmgWater    int `json:"dmg_water"`
	DmgAir      int `json:"dmg_air"`
	Dmg         int `json:"dmg"`
	ResFire     int `json:"res_fire"`
	ResEarth    int `json:"res_earth"`
	ResWater    int `json:"res_water"`
	ResAir      int `json:"res_air"`

	MiningLevel          int `json:"mining_level"`
	WoodcuttingLevel     int `json:"woodcutting_level"`
	FishingLevel         int `json:"fishing_level"`
	AlchemyLevel         int `json:"alchemy_level"`
	CookingLevel         int `json:"cooking_level"`
	WeaponcraftingLevel  int `json:"weaponcrafting_level"`
	GearcraftingLevel    int `json:"gearcrafting_level"`
	JewelrycraftingLevel int `json:"jewelrycrafting_level"`

	WeaponSlot    string `json:"weapon_slot"`
	ShieldSlot    string `json:"shield_slot"`
	HelmetSlot    string `json:"helmet_slot"`
	BodyArmorSlot string `json:"body_armor_slot"`
	LegArmorSlot  string `json:"leg_armor_slot"`
	BootsSlot     string `json:"boots_slot"`
	Ring1Slot     string `json:"ring1_slot"`
	Ring2Slot     string `json:"ring2_slot"`
	AmuletSlot    string `json:"amulet_slot"`
	BagSlot       string `json:"bag_slot"`
	RuneSlot      string `json:"rune_slot"`
	Utility1Slot  string `json:"utility1_slot"`
	Utility2Slot  string `json:"utility2_slot"`
	Artifact1Slot string `json:"artifact1_slot"`
	Artifact2Slot string `json:"artifact2_slot"`
	Artifact3Slot string `json:"artifact3_slot"`

	Utility1SlotQuantity int `json:"utility1_slot_quantity"`
	Utility2SlotQuantity int `json:"utility2_slot_quantity"`

	Inventory []struct {
		Slot     int    `json:"slot"`
		Code     string `json:"code"`
		Quantity int    `json:"quantity"`
	} `json:"inventory"`
	InventoryMaxItems int `json:"inventory_max_items"`

	Task         string `json:"task"`
	TaskType     string `json:"task_type"`
	TaskProgress int    `json:"task_progress"`
	TaskTotal    int    `json:"task_total"`

	CooldownExpiration string `json:"cooldown_expiration"`
	Cooldown           int    `json:"cooldown"`
}

func (p *characterPayload) toSnapshot() *character.Snapshot {
	snap := &character.Snapshot{
		Name:           p.Name,
		X:              p.X,
		Y:              p.Y,
		Level:          p.Level,
		XP:             p.XP,
		MaxXP:          p.MaxXP,
		Gold:           p.Gold,
		HP:             p.HP,
		MaxHP:          p.MaxHP,
		Haste:          p.Haste,
		CriticalStrike: p.CriticalStrike,
		AttackFire:     p.AttackFire,
		AttackEarth:    p.AttackEarth,
		AttackWater:    p.AttackWater,
		AttackAir:      p.AttackAir,
		DmgFire:        p.DmgFire,
		DmgEarth:       p.DmgEarth,
		DmgWater:       p.DmgWater,
		DmgAir:         p.DmgAir,
		Dmg:            p.Dmg,
		ResFire:        p.ResFire,
		ResEarth:       p.ResEarth,
		ResWater:       p.ResWater,
		ResAir:         p.ResAir,
		SkillLevels: map[string]int{
			game.SkillMining:          p.MiningLevel,
			game.SkillWoodcutting:     p.WoodcuttingLevel,
			game.SkillFishing:         p.FishingLevel,
			game.SkillAlchemy:         p.AlchemyLevel,
			game.SkillCooking:         p.CookingLevel,
			game.SkillWeaponcrafting:  p.WeaponcraftingLevel,
			game.SkillGearcrafting:    p.GearcraftingLevel,
			game.SkillJewelrycrafting: p.JewelrycraftingLevel,
		},
		Equipment: map[string]string{
			character.SlotWeapon:    p.WeaponSlot,
			character.SlotShield:    p.ShieldSlot,
			character.SlotHelmet:    p.HelmetSlot,
			character.SlotBodyArmor: p.BodyArmorSlot,
			character.SlotLegArmor:  p.LegArmorSlot,
			character.SlotBoots:     p.BootsSlot,
			character.SlotRing1:     p.Ring1Slot,
			character.SlotRing2:     p.Ring2Slot,
			character.SlotAmulet:    p.AmuletSlot,
			character.SlotBag:       p.BagSlot,
			character.SlotRune:      p.RuneSlot,
			character.SlotUtility1:  p.Utility1Slot,
			character.SlotUtility2:  p.Utility2Slot,
			character.SlotArtifact1: p.Artifact1Slot,
			character.SlotArtifact2: p.Artifact2Slot,
			character.SlotArtifact3: p.Artifact3Slot,
		},
		UtilityQuantities: map[string]int{
			character.SlotUtility1: p.Utility1SlotQuantity,
			character.SlotUtility2: p.Utility2SlotQuantity,
		},
		InventoryMaxItems: p.InventoryMaxItems,
		Task:              p.Task,
		TaskType:          p.TaskType,
		TaskProgress:      p.TaskProgress,
		TaskTotal:         p.TaskTotal,
	}
	for _, slot := range p.Inventory {
		snap.Inventory = append(snap.Inventory, character.InventorySlot{
			Slot:     slot.Slot,
			Code:     slot.Code,
			Quantity: slot.Quantity,
		})
	}
	if expiry, err := time.Parse(time.RFC3339, p.CooldownExpiration); err == nil {
		snap.Cooldown = shared.Cooldown{
			RemainingSeconds: float64(p.Cooldown),
			Expiration:       expiry,
		}
	}
	return snap
}

// cooldownPayload is the cooldown block every action response carries.
// Expiration is authoritative; the seconds field is informational.
type cooldownPayload struct {
	TotalSeconds     int     `json:"total_seconds"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Expiration       string  `json:"expiration"`
	Reason           string  `json:"reason"`
}

func (p *cooldownPayload) toCooldown() shared.Cooldown {
	cd := shared.Cooldown{
		RemainingSeconds: p.RemainingSeconds,
		Reason:           p.Reason,
	}
	if expiry, err := time.Parse(time.RFC3339, p.Expiration); err == nil {
		cd.Expiration = expiry
	}
	return cd
}

// GetCharacter fetches the full snapshot for one character
func (c *Client) GetCharacter(ctx context.Context, name string) (*character.Snapshot, error) {
	var response struct {
		Data characterPayload `json:"data"`
	}
	path := fmt.Sprintf("/characters/%s", url.PathEscape(name))
	if err := c.request(ctx, "GET", path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get character %s: %w", name, err)
	}
	return response.Data.toSnapshot(), nil
}
