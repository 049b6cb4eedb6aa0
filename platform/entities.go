package platform

// The detail marker interfaces below stand in for the source's boxed
// platform-specific payload inside each cross-platform union variant. Wire
// shapes are an external-collaborator concern (spec §1 non-goal); these
// carry only the handful of fields every consumer of this module actually
// needs, enough to exercise the envelope and the freshness policy.

// AccountDetail is implemented by every platform's account payload.
type AccountDetail interface{ isAccountDetail() }

// FriendDetail is implemented by every platform's friend/contact payload.
type FriendDetail interface{ isFriendDetail() }

// InstanceDetail is implemented by every platform's instance/room payload.
type InstanceDetail interface{ isInstanceDetail() }

// WorldDetail is implemented by every platform's world payload.
type WorldDetail interface{ isWorldDetail() }

// AvatarDetail is implemented by every platform's avatar payload.
type AvatarDetail interface{ isAvatarDetail() }

// Account is the cross-platform union (platform, owned detail), wrapped by
// callers in DataAndMetadata.
type Account struct {
	ID     AccountID
	Detail AccountDetail
}

func (a Account) Platform() Tag { return a.ID.Platform }

// Friend is the cross-platform friend/contact union.
type Friend struct {
	ID     AccountID
	Detail FriendDetail
}

func (f Friend) Platform() Tag { return f.ID.Platform }

// Instance is the cross-platform instance/room union.
type Instance struct {
	ID     InstanceID
	Detail InstanceDetail
}

func (i Instance) Platform() Tag { return i.ID.Platform }

// World is the cross-platform world union.
type World struct {
	ID     WorldID
	Detail WorldDetail
}

func (w World) Platform() Tag { return w.ID.Platform }

// Avatar is the cross-platform avatar union.
type Avatar struct {
	ID     AvatarID
	Detail AvatarDetail
}

func (a Avatar) Platform() Tag { return a.ID.Platform }

// VRChatAccountDetail, ChilloutVRAccountDetail, ResoniteAccountDetail are
// the per-platform account payloads, mirroring the split concrete structs
// the source boxes per platform rather than one superset struct.
type VRChatAccountDetail struct {
	DisplayName string
	Bio         string
}

func (VRChatAccountDetail) isAccountDetail() {}

type ChilloutVRAccountDetail struct {
	Name string
}

func (ChilloutVRAccountDetail) isAccountDetail() {}

type ResoniteAccountDetail struct {
	Username string
}

func (ResoniteAccountDetail) isAccountDetail() {}

// VRChatFriendDetail and friends: per-platform friend payloads.
type VRChatFriendDetail struct {
	DisplayName string
	Status      string
}

func (VRChatFriendDetail) isFriendDetail() {}

type ChilloutVRFriendDetail struct {
	Name     string
	IsOnline bool
}

func (ChilloutVRFriendDetail) isFriendDetail() {}

type ResoniteFriendDetail struct {
	Username string
}

func (ResoniteFriendDetail) isFriendDetail() {}

// VRChatInstanceDetail and friends: per-platform instance payloads.
type VRChatInstanceDetail struct {
	WorldID     string
	Region      string
	PlayerCount int
}

func (VRChatInstanceDetail) isInstanceDetail() {}

type ChilloutVRInstanceDetail struct {
	Name        string
	PlayerCount int
}

func (ChilloutVRInstanceDetail) isInstanceDetail() {}

type ResoniteInstanceDetail struct {
	SessionName string
	PlayerCount int
}

func (ResoniteInstanceDetail) isInstanceDetail() {}

// VRChatWorldDetail and friends: per-platform world payloads.
type VRChatWorldDetail struct {
	Name        string
	AuthorName  string
	Capacity    int
}

func (VRChatWorldDetail) isWorldDetail() {}

type ChilloutVRWorldDetail struct {
	Name string
}

func (ChilloutVRWorldDetail) isWorldDetail() {}

type ResoniteWorldDetail struct {
	Name string
}

func (ResoniteWorldDetail) isWorldDetail() {}

// VRChatAvatarDetail and friends: per-platform avatar payloads.
type VRChatAvatarDetail struct {
	Name       string
	AuthorName string
}

func (VRChatAvatarDetail) isAvatarDetail() {}

type ChilloutVRAvatarDetail struct {
	Name string
}

func (ChilloutVRAvatarDetail) isAvatarDetail() {}

type ResoniteAvatarDetail struct {
	Name string
}

func (ResoniteAvatarDetail) isAvatarDetail() {}
