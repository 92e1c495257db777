// Package catalog defines the canonical listing field registry. The catalog
// is immutable and loaded once at process start; catalog order is significant
// for mapper tie-breaks and must stay stable.
package catalog

import "github.com/Ramsey-B/fern/pkg/models"

const (
	CategoryIdentity  = "identity"
	CategoryAddress   = "address"
	CategoryProperty  = "property"
	CategoryFinancial = "financial"
	CategoryDates     = "dates"
	CategoryAgent     = "agent"
	CategoryOffice    = "office"
	CategoryMedia     = "media"
	CategoryFeatures  = "features"
	CategoryRemarks   = "remarks"
)

// Canonical field names referenced by other packages
const (
	FieldMLSNumber    = "mlsNumber"
	FieldStreetNumber = "streetNumber"
	FieldStreetName   = "streetName"
	FieldStreetSuffix = "streetSuffix"
	FieldUnitNumber   = "unitNumber"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZipCode      = "zipCode"
	FieldListPrice    = "listPrice"
	FieldPhotos       = "photos"
)

var fields = []models.FieldDefinition{
	// Identity
	{Name: FieldMLSNumber, Variations: []string{"mls number", "mls #", "mls#", "mls id", "mlsid", "mls", "listing number", "listing id", "ml number", "ml #"}, Required: false, Type: models.DataTypeString, Category: CategoryIdentity},
	{Name: "parcelNumber", Variations: []string{"parcel number", "parcel id", "apn", "tax id", "tax parcel", "parcel"}, Required: false, Type: models.DataTypeString, Category: CategoryIdentity},

	// Address
	{Name: FieldStreetNumber, Variations: []string{"street number", "street #", "house number", "st number", "st #", "number"}, Required: false, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldStreetName, Variations: []string{"street name", "street", "st name", "road name"}, Required: true, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldStreetSuffix, Variations: []string{"street suffix", "street type", "st suffix", "suffix"}, Required: false, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldUnitNumber, Variations: []string{"unit number", "unit", "unit #", "apt", "apartment", "suite", "apt #"}, Required: false, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldCity, Variations: []string{"city", "town", "municipality", "city name"}, Required: true, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldState, Variations: []string{"state", "province", "state/province", "st", "state code"}, Required: true, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: FieldZipCode, Variations: []string{"zip code", "zip", "zipcode", "postal code", "postal", "zip/postal code"}, Required: true, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: "county", Variations: []string{"county", "county name", "parish"}, Required: false, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: "subdivision", Variations: []string{"subdivision", "neighborhood", "neighbourhood", "community", "development"}, Required: false, Type: models.DataTypeString, Category: CategoryAddress},
	{Name: "latitude", Variations: []string{"latitude", "lat"}, Required: false, Type: models.DataTypeNumber, Category: CategoryAddress},
	{Name: "longitude", Variations: []string{"longitude", "lng", "long", "lon"}, Required: false, Type: models.DataTypeNumber, Category: CategoryAddress},

	// Financial
	{Name: FieldListPrice, Variations: []string{"list price", "price", "listing price", "asking price", "current price", "list price ($)", "lp"}, Required: true, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "originalPrice", Variations: []string{"original price", "original list price", "olp", "starting price"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "soldPrice", Variations: []string{"sold price", "sale price", "closed price", "sp"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "taxAnnualAmount", Variations: []string{"taxes", "annual taxes", "tax amount", "property taxes", "tax annual amount"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "taxYear", Variations: []string{"tax year"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "hoaFee", Variations: []string{"hoa fee", "hoa", "hoa dues", "association fee", "monthly hoa", "condo fee"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},
	{Name: "hoaFrequency", Variations: []string{"hoa frequency", "association fee frequency", "hoa fee frequency"}, Required: false, Type: models.DataTypeString, Category: CategoryFinancial},
	{Name: "pricePerSquareFoot", Variations: []string{"price per sq ft", "price/sqft", "price per square foot", "$/sqft"}, Required: false, Type: models.DataTypeNumber, Category: CategoryFinancial},

	// Property
	{Name: "propertyType", Variations: []string{"property type", "type", "prop type", "listing type", "class", "property class"}, Required: true, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "propertySubType", Variations: []string{"property sub type", "sub type", "subtype", "style", "dwelling type"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "status", Variations: []string{"status", "listing status", "mls status", "current status"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "bedrooms", Variations: []string{"bedrooms", "beds", "bed", "br", "# of bedrooms", "total bedrooms", "bdrms"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "bathroomsFull", Variations: []string{"full baths", "full bathrooms", "baths full", "fb"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "bathroomsHalf", Variations: []string{"half baths", "half bathrooms", "baths half", "hb"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "bathroomsTotal", Variations: []string{"bathrooms", "baths", "bath", "ba", "# of bathrooms", "total baths"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "squareFeet", Variations: []string{"square feet", "sqft", "sq ft", "living area", "total sqft", "square footage", "gla", "finished sqft"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "lotSize", Variations: []string{"lot size", "lot sqft", "lot area", "lot size sqft"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "lotSizeAcres", Variations: []string{"acres", "lot acres", "lot size acres", "acreage"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "yearBuilt", Variations: []string{"year built", "built", "yr built", "construction year", "year"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "stories", Variations: []string{"stories", "levels", "floors", "# of stories"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "garageSpaces", Variations: []string{"garage spaces", "garage", "garages", "# of garage spaces", "garage stalls"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "parkingSpaces", Variations: []string{"parking spaces", "parking", "total parking", "# of parking spaces"}, Required: false, Type: models.DataTypeNumber, Category: CategoryProperty},
	{Name: "basement", Variations: []string{"basement", "basement type", "bsmt"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "roofType", Variations: []string{"roof", "roof type", "roofing"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "heating", Variations: []string{"heating", "heat", "heating type", "heat type"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "cooling", Variations: []string{"cooling", "ac", "air conditioning", "cooling type"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "waterSource", Variations: []string{"water", "water source", "water supply"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "sewer", Variations: []string{"sewer", "septic", "sewer type", "waste"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "zoning", Variations: []string{"zoning", "zone", "zoning code"}, Required: false, Type: models.DataTypeString, Category: CategoryProperty},
	{Name: "newConstruction", Variations: []string{"new construction", "new build", "is new construction"}, Required: false, Type: models.DataTypeBoolean, Category: CategoryProperty},
	{Name: "waterfront", Variations: []string{"waterfront", "water front", "is waterfront"}, Required: false, Type: models.DataTypeBoolean, Category: CategoryProperty},
	{Name: "pool", Variations: []string{"pool", "has pool", "pool type"}, Required: false, Type: models.DataTypeBoolean, Category: CategoryProperty},
	{Name: "fireplace", Variations: []string{"fireplace", "fireplaces", "# of fireplaces", "has fireplace"}, Required: false, Type: models.DataTypeBoolean, Category: CategoryProperty},

	// Features
	{Name: "interiorFeatures", Variations: []string{"interior features", "interior", "inside features"}, Required: false, Type: models.DataTypeArray, Category: CategoryFeatures},
	{Name: "exteriorFeatures", Variations: []string{"exterior features", "exterior", "outside features"}, Required: false, Type: models.DataTypeArray, Category: CategoryFeatures},
	{Name: "appliances", Variations: []string{"appliances", "appliances included", "included appliances"}, Required: false, Type: models.DataTypeArray, Category: CategoryFeatures},
	{Name: "flooring", Variations: []string{"flooring", "floors", "floor covering"}, Required: false, Type: models.DataTypeArray, Category: CategoryFeatures},
	{Name: "schoolDistrict", Variations: []string{"school district", "district", "schools"}, Required: false, Type: models.DataTypeString, Category: CategoryFeatures},
	{Name: "elementarySchool", Variations: []string{"elementary school", "elementary", "grade school"}, Required: false, Type: models.DataTypeString, Category: CategoryFeatures},
	{Name: "middleSchool", Variations: []string{"middle school", "junior high"}, Required: false, Type: models.DataTypeString, Category: CategoryFeatures},
	{Name: "highSchool", Variations: []string{"high school"}, Required: false, Type: models.DataTypeString, Category: CategoryFeatures},

	// Dates
	{Name: "listDate", Variations: []string{"list date", "listing date", "date listed", "on market date", "listed"}, Required: false, Type: models.DataTypeDate, Category: CategoryDates},
	{Name: "expirationDate", Variations: []string{"expiration date", "expiry date", "expires", "expiration"}, Required: false, Type: models.DataTypeDate, Category: CategoryDates},
	{Name: "soldDate", Variations: []string{"sold date", "sale date", "closing date", "closed date", "date sold"}, Required: false, Type: models.DataTypeDate, Category: CategoryDates},
	{Name: "daysOnMarket", Variations: []string{"days on market", "dom", "cdom", "market days"}, Required: false, Type: models.DataTypeNumber, Category: CategoryDates},

	// Agent
	{Name: "listingAgentName", Variations: []string{"listing agent", "agent name", "agent", "list agent", "listing agent name"}, Required: false, Type: models.DataTypeString, Category: CategoryAgent},
	{Name: "listingAgentEmail", Variations: []string{"agent email", "listing agent email", "email"}, Required: false, Type: models.DataTypeString, Category: CategoryAgent},
	{Name: "listingAgentPhone", Variations: []string{"agent phone", "listing agent phone", "phone", "agent cell"}, Required: false, Type: models.DataTypeString, Category: CategoryAgent},
	{Name: "listingAgentLicense", Variations: []string{"agent license", "license number", "license #", "agent license number"}, Required: false, Type: models.DataTypeString, Category: CategoryAgent},
	{Name: "coListingAgentName", Variations: []string{"co listing agent", "co-listing agent", "co agent", "colist agent"}, Required: false, Type: models.DataTypeString, Category: CategoryAgent},

	// Office
	{Name: "listingOfficeName", Variations: []string{"listing office", "office", "brokerage", "broker", "office name", "listing brokerage"}, Required: false, Type: models.DataTypeString, Category: CategoryOffice},
	{Name: "listingOfficePhone", Variations: []string{"office phone", "brokerage phone", "broker phone"}, Required: false, Type: models.DataTypeString, Category: CategoryOffice},
	{Name: "commissionRate", Variations: []string{"commission", "commission rate", "buyer agent commission", "co-op commission"}, Required: false, Type: models.DataTypeString, Category: CategoryOffice},

	// Media
	{Name: FieldPhotos, Variations: []string{"photos", "photo urls", "images", "image urls", "pictures", "photo links", "media"}, Required: false, Type: models.DataTypeArray, Category: CategoryMedia},
	{Name: "virtualTourUrl", Variations: []string{"virtual tour", "virtual tour url", "tour link", "3d tour", "matterport"}, Required: false, Type: models.DataTypeString, Category: CategoryMedia},
	{Name: "videoUrl", Variations: []string{"video", "video url", "video link"}, Required: false, Type: models.DataTypeString, Category: CategoryMedia},

	// Remarks
	{Name: "publicRemarks", Variations: []string{"remarks", "public remarks", "description", "property description", "marketing remarks", "comments"}, Required: false, Type: models.DataTypeString, Category: CategoryRemarks},
	{Name: "privateRemarks", Variations: []string{"private remarks", "agent remarks", "broker remarks", "internal notes"}, Required: false, Type: models.DataTypeString, Category: CategoryRemarks},
	{Name: "showingInstructions", Variations: []string{"showing instructions", "showing info", "showings", "showing notes"}, Required: false, Type: models.DataTypeString, Category: CategoryRemarks},
}

// Fields returns the full catalog in stable order. Callers must not mutate
// the returned slice.
func Fields() []models.FieldDefinition {
	return fields
}

// RequiredFields returns the catalog entries flagged required, in catalog order
func RequiredFields() []models.FieldDefinition {
	required := make([]models.FieldDefinition, 0, 8)
	for _, f := range fields {
		if f.Required {
			required = append(required, f)
		}
	}
	return required
}

// ByName returns the catalog entry with the given canonical name
func ByName(name string) (models.FieldDefinition, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return models.FieldDefinition{}, false
}
