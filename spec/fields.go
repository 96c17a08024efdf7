package spec

import (
	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/path"
)

// Field name tokens for every field category a typed view exposes.
// Interned once at package init rather than re-interned on every access.
var (
	fieldSpecifier       = path.Intern("specifier")
	fieldTypeName        = path.Intern("typeName")
	fieldKind            = path.Intern("kind")
	fieldActive          = path.Intern("active")
	fieldHidden          = path.Intern("hidden")
	fieldComment         = path.Intern("comment")
	fieldDocumentation   = path.Intern("documentation")
	fieldCustomData      = path.Intern("customData")
	fieldAssetInfo       = path.Intern("assetInfo")
	fieldReferences      = path.Intern("references")
	fieldPayloads        = path.Intern("payload")
	fieldInherits        = path.Intern("inheritPaths")
	fieldSpecializes     = path.Intern("specializes")
	fieldVariantSetNames = path.Intern("variantSetNames")
	fieldVariantSelection = path.Intern("variantSelection")
	fieldRelocates       = path.Intern("relocates")

	fieldVariability      = path.Intern("variability")
	fieldCustom           = path.Intern("custom")
	fieldDefault          = path.Intern("default")
	fieldPermission       = path.Intern("permission")
	fieldDisplayGroup     = path.Intern("displayGroup")
	fieldDisplayName      = path.Intern("displayName")
	fieldPrefix           = path.Intern("prefix")
	fieldSuffix           = path.Intern("suffix")
	fieldSymmetricPeer    = path.Intern("symmetricPeer")
	fieldSymmetryFunction = path.Intern("symmetryFunction")
	fieldSymmetryArgs     = path.Intern("symmetryArguments")

	fieldColorSpace      = path.Intern("colorSpace")
	fieldDisplayUnit     = path.Intern("displayUnit")
	fieldAllowedTokens   = path.Intern("allowedTokens")
	fieldConnectionPaths = path.Intern("connectionPaths")

	fieldTargetPaths = path.Intern("targetPaths")
	fieldNoLoadHint  = path.Intern("noLoadHint")
)

// requiredFields gives the minimal field set per spec type, used by
// HasOnlyRequiredFields.
var requiredFields = map[data.SpecType][]path.Token{
	data.Prim:         {fieldSpecifier},
	data.Attribute:    {fieldVariability, fieldTypeName},
	data.Relationship: {fieldVariability},
	data.VariantSet:   {},
	data.Variant:      {},
}

func getTokenField(h SpecHandle, f path.Token) (string, bool) {
	v, ok := h.GetField(f)
	if !ok {
		return "", false
	}
	s, ok := valueString(v)
	return s, ok
}

func getBoolField(h SpecHandle, f path.Token) (bool, bool) {
	v, ok := h.GetField(f)
	if !ok {
		return false, false
	}
	return valueBool(v)
}
