package progression

// MaxLevel is the highest reachable level.
const MaxLevel = 25

// levelThresholds[i] is the XP needed for level i+1.
var levelThresholds = []int{
	0, 100, 250, 500, 850, 1300, 1850, 2500, 3250, 4100,
	5100, 6200, 7500, 9000, 10700, 12600, 14700, 17000, 19500, 22200,
	25100, 28200, 31500, 35000, 40000,
}

// LevelForXP returns the largest level whose threshold is at most xp.
func LevelForXP(xp int) int {
	level := 1
	for i, th := range levelThresholds {
		if xp >= th {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// XPForLevel returns the threshold for level, clamped to the table.
func XPForLevel(level int) int {
	switch {
	case level <= 1:
		return 0
	case level >= MaxLevel:
		return levelThresholds[MaxLevel-1]
	}
	return levelThresholds[level-1]
}

// Reward is a cosmetic unlocked at a level milestone.
type Reward struct {
	Level int
	Name  string
	Icon  string
	Kind  string
}

var levelRewards = []Reward{
	{1, "Rookie", "🌱", "title"},
	{5, "Bronze Border", "🥉", "border"},
	{10, "Silver Border", "🥈", "border"},
	{12, "Hot Streak Badge", "🔥", "badge"},
	{15, "Gold Border", "🥇", "border"},
	{18, "Sharp Eye Badge", "🎯", "badge"},
	{20, "Platinum Border", "💎", "border"},
	{22, "Elite Title", "⚡", "title"},
	{25, "Champion Border", "👑", "border"},
}

// RewardAt returns the reward unlocked exactly at level, if any.
func RewardAt(level int) (Reward, bool) {
	for _, r := range levelRewards {
		if r.Level == level {
			return r, true
		}
	}
	return Reward{}, false
}

// Tier names a band of levels.
func Tier(level int) string {
	switch {
	case level >= 25:
		return "Champion"
	case level >= 20:
		return "Platinum"
	case level >= 15:
		return "Gold"
	case level >= 10:
		return "Silver"
	case level >= 5:
		return "Bronze"
	default:
		return "Rookie"
	}
}

// LevelInfo summarises a player's position on the level table.
type LevelInfo struct {
	Level        int
	Tier         string
	XP           int
	LevelStartXP int
	NextLevelXP  int
	XPToNext     int
	Progress     float64 // 0..1 through the current level
	IsMax        bool
	NextReward   *Reward
}

// Info describes the level reached with xp.
func Info(xp int) LevelInfo {
	level := LevelForXP(xp)
	info := LevelInfo{
		Level:        level,
		Tier:         Tier(level),
		XP:           xp,
		LevelStartXP: XPForLevel(level),
		IsMax:        level >= MaxLevel,
	}
	if info.IsMax {
		info.NextLevelXP = info.LevelStartXP
		info.Progress = 1
	} else {
		info.NextLevelXP = XPForLevel(level + 1)
		info.XPToNext = info.NextLevelXP - xp
		span := info.NextLevelXP - info.LevelStartXP
		info.Progress = float64(xp-info.LevelStartXP) / float64(span)
	}
	for _, r := range levelRewards {
		if r.Level > level {
			next := r
			info.NextReward = &next
			break
		}
	}
	return info
}
