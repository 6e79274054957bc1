package model

// SkillID identifies a skill in the catalogue
type SkillID string

const (
	SkillRemoveStone  SkillID = "feishazoushi"    // Remove one unprotected enemy stone
	SkillFreezeTurn   SkillID = "shiguangdongjie" // Opponent skips their next turn
	SkillShield       SkillID = "guruojintang"    // Protect own stones for 2 turns
	SkillRelocate     SkillID = "yihuajiemu"      // Move own stone to an adjacent empty cell
	SkillRewind       SkillID = "shiguangdaoliu"  // Take back the last placement
	SkillShuffle      SkillID = "libashanxi"      // Scatter every stone across the board
	SkillForbidRegion SkillID = "huadweiliao"     // Block a 3x3 region for the opponent
	SkillPurgeRecent  SkillID = "fudichouxin"     // Remove the opponent's last 3 placements
	SkillRandomPurge  SkillID = "baojieshangmen"  // Remove 1-3 random enemy stones
)

// SkillCategory groups skills for presentation only
type SkillCategory string

const (
	CategoryAttack  SkillCategory = "attack"
	CategoryControl SkillCategory = "control"
	CategoryDefense SkillCategory = "defense"
	CategorySpecial SkillCategory = "special"
	CategoryChaos   SkillCategory = "chaos"
)

// SkillDefinition is a static catalogue entry
type SkillDefinition struct {
	ID          SkillID       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Cost        int           `json:"cost"`
	Cooldown    int           `json:"cooldown"`
	Category    SkillCategory `json:"category"`
}

var skillCatalogue = []SkillDefinition{
	{
		ID:          SkillRemoveStone,
		Name:        "飞沙走石",
		Description: "Remove any one of the opponent's unprotected stones",
		Cost:        2,
		Cooldown:    3,
		Category:    CategoryAttack,
	},
	{
		ID:          SkillFreezeTurn,
		Name:        "静如止水",
		Description: "The opponent skips their next turn",
		Cost:        2,
		Cooldown:    4,
		Category:    CategoryControl,
	},
	{
		ID:          SkillShield,
		Name:        "固若金汤",
		Description: "Your stones cannot be removed for 2 turns",
		Cost:        1,
		Cooldown:    3,
		Category:    CategoryDefense,
	},
	{
		ID:          SkillRelocate,
		Name:        "移花接木",
		Description: "Move one of your stones to an adjacent empty cell",
		Cost:        1,
		Cooldown:    2,
		Category:    CategorySpecial,
	},
	{
		ID:          SkillRewind,
		Name:        "拾金不昧",
		Description: "Take back the most recent placement",
		Cost:        3,
		Cooldown:    5,
		Category:    CategorySpecial,
	},
	{
		ID:          SkillShuffle,
		Name:        "力拔山兮",
		Description: "Randomly scatter every stone on the board",
		Cost:        4,
		Cooldown:    7,
		Category:    CategoryChaos,
	},
	{
		ID:          SkillForbidRegion,
		Name:        "擒擒拿拿",
		Description: "The opponent cannot place inside a 3x3 region for 2 turns",
		Cost:        2,
		Cooldown:    4,
		Category:    CategoryControl,
	},
	{
		ID:          SkillPurgeRecent,
		Name:        "釜底抽薪",
		Description: "Remove the opponent's 3 most recently placed stones",
		Cost:        3,
		Cooldown:    5,
		Category:    CategoryAttack,
	},
	{
		ID:          SkillRandomPurge,
		Name:        "保洁上门",
		Description: "Remove 1 to 3 random unprotected enemy stones",
		Cost:        3,
		Cooldown:    6,
		Category:    CategoryAttack,
	},
}

// Skills returns the full catalogue in display order
func Skills() []SkillDefinition {
	result := make([]SkillDefinition, len(skillCatalogue))
	copy(result, skillCatalogue)
	return result
}

// LookupSkill returns the catalogue entry for a skill id
func LookupSkill(id SkillID) (SkillDefinition, bool) {
	for _, def := range skillCatalogue {
		if def.ID == id {
			return def, true
		}
	}
	return SkillDefinition{}, false
}

// SkillTarget is the target payload of a skill operation.
// Cell is used by remove-stone and forbid-region (as the region center);
// From and To are used by relocate. Skills without a target ignore it.
type SkillTarget struct {
	Cell *Position `json:"cell,omitempty"`
	From *Position `json:"from,omitempty"`
	To   *Position `json:"to,omitempty"`
}

// SkillEffectKind names an ancillary follow-up of a resolved skill
type SkillEffectKind string

const (
	EffectStonesRemoved SkillEffectKind = "stones_removed"
	EffectStoneMoved    SkillEffectKind = "stone_moved"
	EffectFreeze        SkillEffectKind = "freeze"
	EffectShield        SkillEffectKind = "shield"
	EffectRegionBlocked SkillEffectKind = "region_blocked"
	EffectBoardShuffled SkillEffectKind = "board_shuffled"
	EffectRewind        SkillEffectKind = "rewind"
)

// SkillEffect describes what a resolved skill changed, for presentation
// collaborators that run after the core mutation
type SkillEffect struct {
	Kind      SkillEffectKind `json:"kind"`
	Skill     SkillID         `json:"skill"`
	Player    Player          `json:"player"`
	Positions []Position      `json:"positions,omitempty"`
	Target    Player          `json:"target,omitempty"`
}
