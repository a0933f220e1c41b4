package bundle

// Named ResourceType values recovered from the original producer's
// enumeration. The type itself stays open (see types.go) so archives
// carrying resource types outside this list still round-trip losslessly;
// these constants exist purely for readability at call sites and in
// diagnostics.
const (
	Raster                       ResourceType = 0x00
	Material                     ResourceType = 0x01
	TextFile                     ResourceType = 0x03
	VertexDesc                   ResourceType = 0x0A
	MaterialCRC32                ResourceType = 0x0B
	Renderable                   ResourceType = 0x0C
	MaterialTechnique            ResourceType = 0x0D
	TextureState                 ResourceType = 0x0E
	MaterialState                ResourceType = 0x0F
	ShaderProgramBuffer          ResourceType = 0x12
	ShaderParameter              ResourceType = 0x14
	Debug                        ResourceType = 0x16
	KdTree                       ResourceType = 0x17
	VoiceHierarchy               ResourceType = 0x18
	Snr                          ResourceType = 0x19
	InterpreterData              ResourceType = 0x1A
	AttribSysSchema              ResourceType = 0x1B
	AttribSysVault               ResourceType = 0x1C
	EntryList                    ResourceType = 0x1D
	AptDataHeaderType            ResourceType = 0x1E
	GuiPopup                     ResourceType = 0x1F
	Font                         ResourceType = 0x21
	LuaCode                      ResourceType = 0x22
	InstanceList                 ResourceType = 0x23
	CollisionMeshData            ResourceType = 0x24
	IDList                       ResourceType = 0x25
	InstanceCollisionList        ResourceType = 0x26
	Language                     ResourceType = 0x27
	SatNavTile                   ResourceType = 0x28
	SatNavTileDirectory          ResourceType = 0x29
	Model                        ResourceType = 0x2A
	RwColourCube                 ResourceType = 0x2B
	HudMessage                   ResourceType = 0x2C
	HudMessageList               ResourceType = 0x2D
	HudMessageSequence           ResourceType = 0x2E
	HudMessageSequenceDictionary ResourceType = 0x2F
	WorldPainter2D               ResourceType = 0x30
	PFXHookBundle                ResourceType = 0x31
	Shader                       ResourceType = 0x32
	ICETakeDictionary            ResourceType = 0x41
	VideoData                    ResourceType = 0x42
	PolygonSoupList              ResourceType = 0x43
	CommsToolListDefinition      ResourceType = 0x45
	CommsToolList                ResourceType = 0x46
	BinaryFile                   ResourceType = 0x50
	AnimationCollection          ResourceType = 0x51
	Registry                     ResourceType = 0xA000
	GenericRwacWaveContent       ResourceType = 0xA020
	GinsuWaveContent             ResourceType = 0xA021
	AemsBank                     ResourceType = 0xA022
	Csis                         ResourceType = 0xA023
	Nicotine                     ResourceType = 0xA024
	Splicer                      ResourceType = 0xA025
	FreqContent                  ResourceType = 0xA026
	VoiceHierarchyCollection     ResourceType = 0xA027
	GenericRwacReverbIRContent   ResourceType = 0xA028
	SnapshotData                 ResourceType = 0xA029
	ZoneList                     ResourceType = 0xB000
	LoopModel                    ResourceType = 0x10000
	AISections                   ResourceType = 0x10001
	TrafficData                  ResourceType = 0x10002
	Trigger                      ResourceType = 0x10003
	DeformationModel             ResourceType = 0x10004
	VehicleList                  ResourceType = 0x10005
	GraphicsSpec                 ResourceType = 0x10006
	PhysicsSpec                  ResourceType = 0x10007
	ParticleDescriptionCollection ResourceType = 0x10008
	WheelList                    ResourceType = 0x10009
	WheelGraphicsSpec            ResourceType = 0x1000A
	TextureNameMap               ResourceType = 0x1000B
	ICEList                      ResourceType = 0x1000C
	ICEData                      ResourceType = 0x1000D
	Progression                  ResourceType = 0x1000E
	PropPhysics                  ResourceType = 0x1000F
	PropGraphicsList             ResourceType = 0x10010
	PropInstanceData             ResourceType = 0x10011
	BrnEnvironmentKeyframe       ResourceType = 0x10012
	BrnEnvironmentTimeLine       ResourceType = 0x10013
	BrnEnvironmentDictionary     ResourceType = 0x10014
	GraphicsStub                 ResourceType = 0x10015
	StaticSoundMap               ResourceType = 0x10016
	StreetData                   ResourceType = 0x10018
	BrnVFXMeshCollection         ResourceType = 0x10019
	MassiveLookupTable           ResourceType = 0x1001A
	VFXPropCollection            ResourceType = 0x1001B
	StreamedDeformationSpec      ResourceType = 0x1001C
	ParticleDescription          ResourceType = 0x1001D
	PlayerCarColours             ResourceType = 0x1001E
	ChallengeList                ResourceType = 0x1001F
	FlaptFile                    ResourceType = 0x10020
	ProfileUpgrade               ResourceType = 0x10021
	VehicleAnimation             ResourceType = 0x10023
	BodypartRemapping            ResourceType = 0x10024
	LUAList                      ResourceType = 0x10025
	LUAScript                    ResourceType = 0x10026
)

// resourceStringTableID is the reserved Legacy-flavor resource ID carrying
// the synthetic resource-string-table payload.
const resourceStringTableID uint32 = 0xC039284A

// legacySyntheticDebugID is the ID the Legacy saver assigns to the
// synthetic debug-info entry it inserts before serialization (mirrors the
// original implementation's 0xFFFFFFFF placeholder).
const legacySyntheticDebugID uint32 = 0xFFFFFFFF
