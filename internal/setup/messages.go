package setup

import "fmt"

// Outbound message texts for the onboarding conversation. Every handled
// reply ends in exactly one of these (plus, on completion, the day's
// question).

const yesNo = "\n(Reply \"Yes\" or \"No\")"

const completionFooter = "\n\nIf you ever want to change your settings, just text \"Dashboard\" to this number. Also, texting \"Help\" will give you a list of all the available commands. Anyways, let's get on to the fun stuff! I'll send you today's question."

const (
	msgAskNameAgain = "My apologies. How do you spell that, again?"

	msgAskZip   = "Ok. What is your current, 5-digit zipcode, then?"
	msgReaskZip = "I'm sorry, I didn't quite catch that. What's your current, 5-digit zipcode?"

	msgAskPartnerIntent   = "Great! Lastly, do you have a partner you want to share your answers with?" + yesNo
	msgReaskPartnerIntent = "I'm sorry, I didn't quite catch that. Do you have a partner you want to share your answers with?" + yesNo
	msgAskPartnerPhone    = "That's just what this app was made for! What is your partner's 10-digit phone number? (e.g. 999-999-9999)"
	msgRollbackIntent     = "Oh, ok! Did you still want to set up a partnership request with someone?" + yesNo

	msgSoloMode = "That's ok. I'll save your answers just for you, and, as the years go by, you'll get to see how your answers differ."
)

func msgConfirmName(name string) string {
	return fmt.Sprintf("Nice to meet you, %s. Did I spell your name correctly?%s", name, yesNo)
}

func msgReconfirmName(name string) string {
	return fmt.Sprintf("I didn't quite catch that last message. I have your name down as %s. Is that spelled correctly?%s", name, yesNo)
}

func msgConfirmCarrierZip(zip, timezone string) string {
	return fmt.Sprintf("Great! It looks like you're texting from the zipcode: %s. That's important, because it tells me what timezone you're in (%s.) Do I have the correct zipcode?%s", zip, timezone, yesNo)
}

func msgConfirmResolvedZip(zip, timezone string) string {
	return fmt.Sprintf("Wonderful. I have %s as your zipcode, which means your timezone is %s. Is that correct?%s", zip, timezone, yesNo)
}

func msgConfirmPartnerPhone(phone string) string {
	return fmt.Sprintf("Ok, just confirming. You want to send a partnership request to %s?%s", phone, yesNo)
}

func msgReconfirmPartnerPhone(phone string) string {
	return fmt.Sprintf("Sorry, didn't quite catch that. Just confirming: you want to send a partnership request to %s?%s", phone, yesNo)
}

func msgAlreadyPartners(userName, partnerName string) string {
	return fmt.Sprintf("Hey %s, it looks like you already have a partnership set up with %s! That means you both will be able to see each others' answers to the daily questions. And, as time goes by, you'll both be reminded of answers from years past.", userName, partnerName)
}

func msgPartnershipCreated(partnerName string) string {
	return fmt.Sprintf("I was able to set up the partnership with %s! That means you both will be able to see each others' answers to the daily questions. And, as time goes by, you'll both be reminded of answers from years past.", partnerName)
}

func msgPartnershipAcceptedNotice(userName string) string {
	return fmt.Sprintf("Congrats! %s confirmed your partnership. When either of you replies to a Daily Question, the other will be sent the answer. As the years go by, you'll also be reminded of previous years' answers. Have fun!", userName)
}

func msgRequestStillPending(userName string) string {
	return fmt.Sprintf("%s, it looks like you already sent a request to that number. Once your partner accepts your request, you both will be able to see each others' answers to the daily questions. And, as time goes by, you'll both be reminded of answers from years past.", userName)
}

func msgConflictToPartner(userName, support string) string {
	return fmt.Sprintf("Hello, it looks like %s tried to request a Q&A partnership with you, but it seems you already have either an existing partner or an existing partnership request pending. Contact %s if this is a mistake.", userName, support)
}

func msgConflictToRequester(userName string) string {
	return fmt.Sprintf("I'm sorry, %s, I'm unable to process the partner request. Contact the person you're trying to connect with to see if they have their account set up to receive a partner.", userName)
}

func msgRequestToPartner(partnerName, userName, userPhone string) string {
	return fmt.Sprintf("%s, you have a request from %s (%s) to be Q&A partners! This means you will be able to see each other's answers to the daily questions. Also, you'll be able to see answers from years past. Would you like me to set up the connection?\n(Reply \"Accept\" or \"Decline\")", partnerName, userName, userPhone)
}

func msgRequestSent(userName string) string {
	return fmt.Sprintf("%s, I sent a partnership request to that phone number. Once your partner accepts your request, you both will be able to see each others' answers to the daily questions. And, as time goes by, you'll both be reminded of answers from years past.", userName)
}

func msgInvite(userName string) string {
	return fmt.Sprintf("Hello! %s sent you an invite to be their partner in a simple SMS app called \"Q&A.\" Q&A sends you daily questions and, when you answer them, sends your answers to your partner (and vice versa.) It's a fun way to get to know each other better. Would you like me to set up an account for you?\n(Reply \"Yes\" or \"No\")", userName)
}

func msgStageFault(name, support string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("I'm sorry, %s. It looks like there's something wrong with your account. Please contact %s, letting them know your account setup stage is not saved correctly.", name, support)
}
