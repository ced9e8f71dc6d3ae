package graph

import "github.com/Sportinger/argus/domain/intel"

func entityTypeToLabel(et intel.EntityType) string {
	switch et {
	case intel.EntityPerson:
		return "Person"
	case intel.EntityOrganization:
		return "Organization"
	case intel.EntityVessel:
		return "Vessel"
	case intel.EntityAircraft:
		return "Aircraft"
	case intel.EntityLocation:
		return "Location"
	case intel.EntityEvent:
		return "Event"
	case intel.EntityDocument:
		return "Document"
	case intel.EntityTransaction:
		return "Transaction"
	case intel.EntitySanction:
		return "Sanction"
	default:
		return "Event"
	}
}

func labelToEntityType(label string) intel.EntityType {
	switch label {
	case "Person":
		return intel.EntityPerson
	case "Organization":
		return intel.EntityOrganization
	case "Vessel":
		return intel.EntityVessel
	case "Aircraft":
		return intel.EntityAircraft
	case "Location":
		return intel.EntityLocation
	case "Event":
		return intel.EntityEvent
	case "Document":
		return intel.EntityDocument
	case "Transaction":
		return intel.EntityTransaction
	case "Sanction":
		return intel.EntitySanction
	default:
		return intel.EntityEvent
	}
}

func relationTypeToLabel(rt intel.RelationType) string {
	switch rt {
	case intel.RelationOwnerOf:
		return "OWNER_OF"
	case intel.RelationDirectorOf:
		return "DIRECTOR_OF"
	case intel.RelationEmployeeOf:
		return "EMPLOYEE_OF"
	case intel.RelationRelatedTo:
		return "RELATED_TO"
	case intel.RelationLocatedAt:
		return "LOCATED_AT"
	case intel.RelationTransactedWith:
		return "TRANSACTED_WITH"
	case intel.RelationSanctionedBy:
		return "SANCTIONED_BY"
	case intel.RelationRegisteredIn:
		return "REGISTERED_IN"
	case intel.RelationFlaggedAs:
		return "FLAGGED_AS"
	case intel.RelationMeetingWith:
		return "MEETING_WITH"
	case intel.RelationTraveledTo:
		return "TRAVELED_TO"
	case intel.RelationPartOf:
		return "PART_OF"
	default:
		return "RELATED_TO"
	}
}

func labelToRelationType(label string) intel.RelationType {
	switch label {
	case "OWNER_OF":
		return intel.RelationOwnerOf
	case "DIRECTOR_OF":
		return intel.RelationDirectorOf
	case "EMPLOYEE_OF":
		return intel.RelationEmployeeOf
	case "RELATED_TO":
		return intel.RelationRelatedTo
	case "LOCATED_AT":
		return intel.RelationLocatedAt
	case "TRANSACTED_WITH":
		return intel.RelationTransactedWith
	case "SANCTIONED_BY":
		return intel.RelationSanctionedBy
	case "REGISTERED_IN":
		return intel.RelationRegisteredIn
	case "FLAGGED_AS":
		return intel.RelationFlaggedAs
	case "MEETING_WITH":
		return intel.RelationMeetingWith
	case "TRAVELED_TO":
		return intel.RelationTraveledTo
	case "PART_OF":
		return intel.RelationPartOf
	default:
		return intel.RelationRelatedTo
	}
}

// allEntityLabels lists every node label the store knows about, used to
// build the EntityTypeStat histogram query.
var allEntityLabels = []intel.EntityType{
	intel.EntityPerson, intel.EntityOrganization, intel.EntityVessel,
	intel.EntityAircraft, intel.EntityLocation, intel.EntityEvent,
	intel.EntityDocument, intel.EntityTransaction, intel.EntitySanction,
}
