package action

// User-facing message formats.
const (
	msgNoConjureFeature   = "%s does not have the Conjure Bullet action"
	msgNoReloadable       = "You have no reloadable weapons"
	msgNoLoaded           = "You have no loaded weapons"
	msgNoFireable         = "You have no loaded weapons to fire"
	msgNotEligible        = "%s cannot be used for this action"
	msgSingleConjured     = "%s already has a conjured round"
	msgFullyLoaded        = "%s is already fully loaded"
	msgLoaded             = "%s is already loaded"
	msgNotLoaded          = "%s is not loaded"
	msgNoAmmunition       = "You have no ammunition that fits %s"
	msgMagazineLoaded     = "%s already has a magazine loaded"
	msgAlreadyConsolidate = "Your ammunition is already consolidated"

	chatConjure     = "%s conjures a round into their %s"
	chatUnloadAmmo  = "%s unloads %s from their %s"
	chatUnload      = "%s unloads their %s"
	chatConsolidate = "%s consolidates their ammunition"
	chatReload      = "%s loads their %s with %s"
	chatFire        = "%s fires their %s"
)
