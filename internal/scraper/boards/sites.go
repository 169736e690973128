package boards

import (
	"fmt"

	"go-locator/internal/scraper"
)

// plainJob is the card layout most of the smaller boards share.
func plainJob(name string, url func(keyword, location string, radiusKm int) string, company string) Site {
	return Site{
		Name:     name,
		URL:      url,
		Card:     "div.job",
		Title:    "h3",
		Link:     "a",
		Company:  company,
		Location: "span.location",
		Posted:   "span.date",
	}
}

// search returns a URL builder for the common "?<kq>=keyword&<lq>=location" form.
func search(base, kq, lq string) func(string, string, int) string {
	return func(keyword, location string, _ int) string {
		return fmt.Sprintf("%s?%s=%s&%s=%s", base, kq, scraper.Plus(keyword), lq, scraper.Plus(location))
	}
}

// pathIn returns a URL builder for "<base>/<keyword>-in-<location>".
func pathIn(base string) func(string, string, int) string {
	return func(keyword, location string, _ int) string {
		return fmt.Sprintf("%s/%s-in-%s", base, scraper.Dashed(keyword), scraper.Dashed(location))
	}
}

func static(s Site) Site {
	s.Static = true
	return s
}

var Sites = []Site{
	{
		Name: "Indeed",
		URL: func(keyword, location string, radiusKm int) string {
			return fmt.Sprintf("https://au.indeed.com/jobs?q=%s&l=%s&radius=%d", scraper.Plus(keyword), scraper.Plus(location), radiusKm)
		},
		Card:     "div.jobsearch-SerpJobCard",
		Title:    "h2.title",
		Link:     "a.jobtitle",
		Host:     "https://au.indeed.com",
		Company:  "span.company",
		Location: "span.location",
		Posted:   "span.date",
	},
	{
		Name: "Jora",
		URL: func(keyword, location string, _ int) string {
			return fmt.Sprintf("https://au.jora.com/%s-jobs-in-%s", scraper.Dashed(keyword), scraper.Dashed(location))
		},
		Card:     "div.job-card",
		Title:    "h2.job-title",
		Link:     "a",
		Host:     "https://au.jora.com",
		Company:  "span.company",
		Location: "span.location",
		Posted:   "span.date",
	},
	{
		Name: "LinkedIn",
		URL: func(keyword, location string, radiusKm int) string {
			return fmt.Sprintf("https://www.linkedin.com/jobs/search/?keywords=%s&location=%s&distance=%d", scraper.Spaced(keyword), scraper.Spaced(location), radiusKm)
		},
		Card:     "li.job-result-card",
		Title:    "h3.job-result-card__title",
		Link:     "a.result-card__full-card-link",
		Company:  "h4.job-result-card__subtitle",
		Location: "span.job-result-card__location",
		Posted:   "time.job-result-card__posted-date",
	},
	{
		Name: "Glassdoor",
		URL: func(keyword, location string, radiusKm int) string {
			kw, loc := scraper.Dashed(keyword), scraper.Dashed(location)
			return fmt.Sprintf("https://www.glassdoor.com.au/Job/%s-jobs-SRCH_KO0,%d_IL.0,%d_IP%s.htm?radius=%d", kw, len(kw), len(loc), loc, radiusKm)
		},
		Card:     "li.jobListing",
		Title:    "a.jobLink",
		Link:     "a.jobLink",
		Company:  "div.jobEmp",
		Location: "span.jobLoc",
		Posted:   "span.jobDate",
	},
	{
		Name: "CareerOne",
		URL: func(keyword, location string, _ int) string {
			return fmt.Sprintf("https://www.careerone.com.au/%s-jobs/in-%s", scraper.Dashed(keyword), scraper.Dashed(location))
		},
		Card:     "div.job",
		Title:    "h2",
		Link:     "a",
		Company:  "span.company",
		Location: "span.location",
		Posted:   "span.date",
	},
	{
		Name: "Adzuna",
		URL: func(keyword, location string, _ int) string {
			return fmt.Sprintf("https://www.adzuna.com.au/search?loc=%s&q=%s", scraper.Plus(location), scraper.Plus(keyword))
		},
		Card:     "div.job-card",
		Title:    "h2",
		Link:     "a",
		Company:  "span.company",
		Location: "span.location",
		Posted:   "span.date",
	},
	plainJob("APSJobs", search("https://www.apsjobs.gov.au/s/search-jobs", "query", "location"), "span.agency"),
	static(plainJob("JobsVIC", search("https://jobs.vic.gov.au/jobs", "query", "location"), "span.department")),
	static(plainJob("SmartJobs", search("https://smartjobs.qld.gov.au/jobs", "query", "location"), "span.department")),
	static(plainJob("JobsWA", search("https://jobs.wa.gov.au/jobs", "query", "location"), "span.department")),
	static(plainJob("EthicalJobs", search("https://www.ethicaljobs.com.au/jobs", "keywords", "location"), "span.organisation")),
	plainJob("Backpacker", pathIn("https://www.backpackerjobboard.com.au/jobs"), "span.company"),
	plainJob("MedicalJobs", pathIn("https://www.medicaljobs.com.au/jobs"), "span.company"),
	plainJob("ArtsHub", search("https://www.artshub.com.au/jobs/search", "keywords", "location"), "span.company"),
	plainJob("FlexCareers", search("https://www.flexcareers.com.au/jobs/search", "keywords", "location"), "span.company"),
	plainJob("GradConnection", search("https://au.gradconnection.com/jobs/search", "keywords", "location"), "span.company"),
	static(plainJob("ProBono", search("https://probonoaustralia.com.au/jobs/search", "keywords", "location"), "span.company")),
	plainJob("Workfast", search("https://www.workfast.com.au/jobs/search", "keywords", "location"), "span.company"),
	plainJob("Talent", search("https://au.talent.com/jobs", "keywords", "location"), "span.company"),
	plainJob("ApplyNow", search("https://www.applynow.com.au/jobs/search", "keywords", "location"), "span.company"),
	plainJob("SimplyHired", search("https://www.simplyhired.com.au/search", "q", "l"), "span.company"),
	static(plainJob("NRMJobs", search("https://www.nrmjobs.com.au/jobs/search", "keywords", "location"), "span.company")),
	plainJob("CareerJet", search("https://www.careerjet.com.au/search/jobs", "s", "l"), "span.company"),
	plainJob("GrabJobs", search("https://grabjobs.co/au/jobs", "keywords", "location"), "span.company"),
}
