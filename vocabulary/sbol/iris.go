package sbol

// Namespace is the SBOL 2 core namespace.
const Namespace = "http://sbols.org/v2#"

// Standard RDF and Dublin Core IRIs used by SBOL serializations.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFType      = RDFNamespace + "type"

	DcTermsNamespace = "http://purl.org/dc/terms/"
	DcTitle          = DcTermsNamespace + "title"
	DcDescription    = DcTermsNamespace + "description"

	ProvNamespace      = "http://www.w3.org/ns/prov#"
	ProvWasDerivedFrom = ProvNamespace + "wasDerivedFrom"
)

// Class IRIs of the SBOL 2 data model.
const (
	ClassComponentDefinition = Namespace + "ComponentDefinition"
	ClassComponent           = Namespace + "Component"
	ClassSequence            = Namespace + "Sequence"
	ClassSequenceAnnotation  = Namespace + "SequenceAnnotation"
	ClassSequenceConstraint  = Namespace + "SequenceConstraint"
	ClassRange               = Namespace + "Range"
	ClassCut                 = Namespace + "Cut"
	ClassGenericLocation     = Namespace + "GenericLocation"
	ClassModuleDefinition    = Namespace + "ModuleDefinition"
	ClassModule              = Namespace + "Module"
	ClassFunctionalComponent = Namespace + "FunctionalComponent"
	ClassInteraction         = Namespace + "Interaction"
	ClassParticipation       = Namespace + "Participation"
	ClassAttachment          = Namespace + "Attachment"
	ClassCollection          = Namespace + "Collection"
)

// Property IRIs of the SBOL 2 data model.
const (
	PropDisplayID           = Namespace + "displayId"
	PropPersistentIdentity  = Namespace + "persistentIdentity"
	PropVersion             = Namespace + "version"
	PropType                = Namespace + "type"
	PropRole                = Namespace + "role"
	PropSequence            = Namespace + "sequence"
	PropElements            = Namespace + "elements"
	PropEncoding            = Namespace + "encoding"
	PropComponent           = Namespace + "component"
	PropDefinition          = Namespace + "definition"
	PropAccess              = Namespace + "access"
	PropDirection           = Namespace + "direction"
	PropSequenceAnnotation  = Namespace + "sequenceAnnotation"
	PropSequenceConstraint  = Namespace + "sequenceConstraint"
	PropLocation            = Namespace + "location"
	PropStart               = Namespace + "start"
	PropEnd                 = Namespace + "end"
	PropAt                  = Namespace + "at"
	PropOrientation         = Namespace + "orientation"
	PropRestriction         = Namespace + "restriction"
	PropSubject             = Namespace + "subject"
	PropObject              = Namespace + "object"
	PropFunctionalComponent = Namespace + "functionalComponent"
	PropModule              = Namespace + "module"
	PropInteraction         = Namespace + "interaction"
	PropParticipation       = Namespace + "participation"
	PropParticipant         = Namespace + "participant"
	PropAttachment          = Namespace + "attachment"
	PropSource              = Namespace + "source"
	PropFormat              = Namespace + "format"
	PropSize                = Namespace + "size"
	PropHash                = Namespace + "hash"
	PropMember              = Namespace + "member"
)

// RestrictionPrecedes orders two sub-components in a sequence constraint.
const RestrictionPrecedes = Namespace + "precedes"

// SONamespace is the identifiers.org prefix of Sequence Ontology terms.
const SONamespace = "http://identifiers.org/so/"

// Sequence Ontology roles recognised on component definitions.
const (
	RolePromoter         = SONamespace + "SO:0000167"
	RoleCDS              = SONamespace + "SO:0000316"
	RoleRBS              = SONamespace + "SO:0000139"
	RoleTerminator       = SONamespace + "SO:0000141"
	RoleRibozyme         = SONamespace + "SO:0000374"
	RoleScar             = SONamespace + "SO:0001953"
	RoleEngineeredRegion = SONamespace + "SO:0000804"
)

// SBONamespace is the identifiers.org prefix of Systems Biology Ontology terms.
const SBONamespace = "http://identifiers.org/biomodels.sbo/"

// Interaction types.
const (
	InteractionInhibition         = SBONamespace + "SBO:0000169"
	InteractionStimulation        = SBONamespace + "SBO:0000170"
	InteractionControl            = SBONamespace + "SBO:0000168"
	InteractionGeneticProduction  = SBONamespace + "SBO:0000589"
	InteractionNonCovalentBinding = SBONamespace + "SBO:0000177"
	InteractionDegradation        = SBONamespace + "SBO:0000179"
)

// Participation roles.
const (
	ParticipantInhibitor  = SBONamespace + "SBO:0000020"
	ParticipantInhibited  = SBONamespace + "SBO:0000642"
	ParticipantStimulator = SBONamespace + "SBO:0000459"
	ParticipantStimulated = SBONamespace + "SBO:0000643"
	ParticipantReactant   = SBONamespace + "SBO:0000010"
	ParticipantProduct    = SBONamespace + "SBO:0000011"
	ParticipantModifier   = SBONamespace + "SBO:0000019"
	ParticipantTemplate   = SBONamespace + "SBO:0000645"
	ParticipantPromoter   = SBONamespace + "SBO:0000598"
)

// Component definition types (BioPAX).
const (
	BioPAXNamespace   = "http://www.biopax.org/release/biopax-level3.owl#"
	TypeDNARegion     = BioPAXNamespace + "DnaRegion"
	TypeProtein       = BioPAXNamespace + "Protein"
	TypeComplex       = BioPAXNamespace + "Complex"
	TypeSmallMolecule = BioPAXNamespace + "SmallMolecule"
)

// FormatJSON is the EDAM format term for JSON attachments.
const FormatJSON = "http://identifiers.org/edam/format_3464"

// EncodingIUPACDNA is the sequence encoding of DNA elements.
const EncodingIUPACDNA = "http://www.chem.qmul.ac.uk/iubmb/misc/naseq.html"
