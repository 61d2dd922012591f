package role

// Action is a permission-gated kind of operation on the platform.
type Action string

const (
	ActionContentCreate   Action = "content-create"
	ActionContentEdit     Action = "content-edit"
	ActionContentDelete   Action = "content-delete"
	ActionContentView     Action = "content-view"
	ActionSelfContentEdit Action = "self-content-edit"
	ActionUserManage      Action = "user-manage"
	ActionUserView        Action = "user-view"
	ActionModerate        Action = "moderate"
)

// Decision is the outcome of a permission evaluation.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Ownership carries the identity comparison for ownership-scoped actions:
// the caller and the recorded owner of the targeted resource.
type Ownership struct {
	CallerID string
	OwnerID  string
}

func (o Ownership) isOwner() bool {
	return o.CallerID != "" && o.CallerID == o.OwnerID
}

var (
	// categoryActions is the per-category baseline permission set.
	categoryActions = map[Category][]Action{
		CategoryExecutive: {
			ActionContentCreate, ActionContentEdit, ActionContentDelete, ActionContentView,
			ActionSelfContentEdit, ActionUserManage, ActionUserView, ActionModerate,
		},
		CategoryTechnical:   {ActionContentView, ActionUserView},
		CategoryModeration:  {ActionContentView, ActionUserView, ActionModerate},
		CategorySpecialized: {ActionContentView, ActionUserView},
		CategoryTeaching:    {ActionContentCreate, ActionSelfContentEdit, ActionContentView},
		CategoryLearning:    {ActionContentView},
		CategoryMentoring:   {ActionContentView, ActionUserView},
		CategoryCommunity:   {ActionContentView, ActionUserView},
		CategoryUser:        {ActionContentView},
	}

	// roleActions grants extra actions on top of a role's category baseline.
	roleActions = map[string][]Action{
		RoleSpecializedContentManager: {ActionContentCreate, ActionContentEdit, ActionContentDelete},
		RoleTeachingAuthor:            {ActionContentEdit},
		RoleMentoringSenior:           {ActionContentEdit},
		RoleMentoringMentor:           {ActionSelfContentEdit},
		RoleMentoringJunior:           {ActionSelfContentEdit},
		// mentoring:trainee stays on the view-only baseline, even for owned resources.
		RoleCommunityManager: {ActionModerate},
	}

	// selfScoped maps an unconditional action to its ownership-scoped variant.
	selfScoped = map[Action]Action{
		ActionContentEdit: ActionSelfContentEdit,
	}
)

// Evaluate decides whether a role set may perform action.
//
// The effective permission is the union across every role's category
// baseline and per-role grants: if any role permits the action, the
// decision is Allow (most-permissive-role-wins). An empty role set, or one
// containing only unrecognized roles, is denied.
//
// For ownership-scoped actions an optional Ownership comparison may be
// supplied: Allow then also results when a role grants the self-scoped
// variant of the action and the caller is the recorded owner.
//
// Evaluate is a pure function of its inputs; it has no side effects.
func Evaluate(roles []string, action Action, owner ...Ownership) Decision {
	for _, r := range roles {
		cat, ok := CategoryOf(r)
		if !ok {
			continue
		}
		if grants(categoryActions[cat], action) || grants(roleActions[r], action) {
			return Allow
		}
		if len(owner) > 0 && owner[0].isOwner() {
			if self, scoped := selfScoped[action]; scoped {
				if grants(categoryActions[cat], self) || grants(roleActions[r], self) {
					return Allow
				}
			}
		}
	}
	return Deny
}

func grants(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
