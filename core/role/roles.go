package role

import "strings"

// Category is the fixed group a role belongs to. It determines the role's
// baseline permissions. Categories are disjoint: every role maps to exactly
// one category, derived from its "category:name" prefix.
type Category string

const (
	CategoryExecutive   Category = "executive"
	CategoryTechnical   Category = "technical"
	CategoryModeration  Category = "moderation"
	CategorySpecialized Category = "specialized"
	CategoryTeaching    Category = "teaching"
	CategoryLearning    Category = "learning"
	CategoryMentoring   Category = "mentoring"
	CategoryCommunity   Category = "community"
	CategoryUser        Category = "user"
)

// Roles
const (
	// Executive
	RoleExecutiveOwner      = "executive:owner"
	RoleExecutiveDirector   = "executive:director"
	RoleExecutiveOperations = "executive:operations"

	// Technical
	RoleTechnicalDeveloper = "technical:developer"
	RoleTechnicalDevops    = "technical:devops"
	RoleTechnicalQA        = "technical:qa"
	RoleTechnicalDesigner  = "technical:designer"

	// Moderation
	RoleModerationModerator  = "moderation:moderator"
	RoleModerationSupport    = "moderation:support"
	RoleModerationReviewer   = "moderation:reviewer"
	RoleModerationCompliance = "moderation:compliance"

	// Specialized
	RoleSpecializedContentManager = "specialized:contentManager"
	RoleSpecializedMarketer       = "specialized:marketer"
	RoleSpecializedAnalyst        = "specialized:analyst"
	RoleSpecializedFinance        = "specialized:finance"

	// Teaching
	RoleTeachingTeacher    = "teaching:teacher"
	RoleTeachingInstructor = "teaching:instructor"
	RoleTeachingAuthor     = "teaching:courseAuthor"

	// Learning
	RoleLearningStudent = "learning:student"
	RoleLearningAuditor = "learning:auditor"
	RoleLearningTrial   = "learning:trial"

	// Mentoring
	RoleMentoringSenior  = "mentoring:senior"
	RoleMentoringMentor  = "mentoring:mentor"
	RoleMentoringJunior  = "mentoring:junior"
	RoleMentoringTrainee = "mentoring:trainee"

	// Community
	RoleCommunityManager    = "community:manager"
	RoleCommunityAmbassador = "community:ambassador"
	RoleCommunityEventHost  = "community:eventHost"
	RoleCommunityTranslator = "community:translator"

	// Regular user
	RoleUser = "user:member"
)

var (
	ExecutiveRoles   = []string{RoleExecutiveOwner, RoleExecutiveDirector, RoleExecutiveOperations}
	TechnicalRoles   = []string{RoleTechnicalDeveloper, RoleTechnicalDevops, RoleTechnicalQA, RoleTechnicalDesigner}
	ModerationRoles  = []string{RoleModerationModerator, RoleModerationSupport, RoleModerationReviewer, RoleModerationCompliance}
	SpecializedRoles = []string{RoleSpecializedContentManager, RoleSpecializedMarketer, RoleSpecializedAnalyst, RoleSpecializedFinance}
	TeachingRoles    = []string{RoleTeachingTeacher, RoleTeachingInstructor, RoleTeachingAuthor}
	LearningRoles    = []string{RoleLearningStudent, RoleLearningAuditor, RoleLearningTrial}
	MentoringRoles   = []string{RoleMentoringSenior, RoleMentoringMentor, RoleMentoringJunior, RoleMentoringTrainee}
	CommunityRoles   = []string{RoleCommunityManager, RoleCommunityAmbassador, RoleCommunityEventHost, RoleCommunityTranslator}
	UserRoles        = []string{RoleUser}

	AllRoles = getAllRoles()

	Categories = []Category{
		CategoryExecutive, CategoryTechnical, CategoryModeration, CategorySpecialized,
		CategoryTeaching, CategoryLearning, CategoryMentoring, CategoryCommunity, CategoryUser,
	}

	rolePriorities = map[string]int{
		// Executives: 90 - 81
		RoleExecutiveOwner:      90,
		RoleExecutiveDirector:   89,
		RoleExecutiveOperations: 88,

		// Technical: 80 - 71
		RoleTechnicalDeveloper: 80,
		RoleTechnicalDevops:    79,
		RoleTechnicalQA:        78,
		RoleTechnicalDesigner:  77,

		// Moderation: 70 - 61
		RoleModerationModerator:  70,
		RoleModerationCompliance: 69,
		RoleModerationReviewer:   68,
		RoleModerationSupport:    67,

		// Specialized: 60 - 51
		RoleSpecializedContentManager: 60,
		RoleSpecializedMarketer:       59,
		RoleSpecializedAnalyst:        58,
		RoleSpecializedFinance:        57,

		// Teaching: 50 - 41
		RoleTeachingTeacher:    50,
		RoleTeachingInstructor: 49,
		RoleTeachingAuthor:     48,

		// Mentoring: 40 - 31
		RoleMentoringSenior:  40,
		RoleMentoringMentor:  39,
		RoleMentoringJunior:  38,
		RoleMentoringTrainee: 37,

		// Community: 30 - 21
		RoleCommunityManager:    30,
		RoleCommunityAmbassador: 29,
		RoleCommunityEventHost:  28,
		RoleCommunityTranslator: 27,

		// Learning: 20 - 11
		RoleLearningStudent: 20,
		RoleLearningAuditor: 19,
		RoleLearningTrial:   18,

		// Regular users: 10 - 1
		RoleUser: 1,
	}

	// Roles lists the display name & value of every role (for UI consumption).
	Roles = getRoleList()
)

func getAllRoles() []string {
	all := make([]string, 0, 30)
	all = append(all, ExecutiveRoles...)
	all = append(all, TechnicalRoles...)
	all = append(all, ModerationRoles...)
	all = append(all, SpecializedRoles...)
	all = append(all, TeachingRoles...)
	all = append(all, LearningRoles...)
	all = append(all, MentoringRoles...)
	all = append(all, CommunityRoles...)
	all = append(all, UserRoles...)
	return all
}

func getRoleList() []Role {
	roles := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		roles = append(roles, Role{Name: displayName(r), Value: r})
	}
	return roles
}

func displayName(role string) string {
	parts := strings.SplitN(role, ":", 2)
	if len(parts) < 2 {
		return role
	}
	name := parts[1]
	return strings.Title(parts[0]) + " " + strings.Title(name)
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CategoryOf returns the Category a role belongs to.
// The mapping is total over AllRoles; unknown roles return ok=false.
func CategoryOf(role string) (Category, bool) {
	idx := strings.IndexByte(role, ':')
	if idx < 0 {
		return "", false
	}
	cat := Category(role[:idx])
	if _, known := categoryActions[cat]; !known {
		return "", false
	}
	if !IsKnown(role) {
		return "", false
	}
	return cat, true
}

// IsKnown reports whether role is part of the closed role set.
func IsKnown(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}
