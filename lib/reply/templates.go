/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package reply

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Headers are picked by the total number of mistakes in the comment.
type Headers struct {
	One  string `yaml:"one"`
	Two  string `yaml:"two"`
	Many string `yaml:"many"`
}

// Mistake renders one entry of the summary. Both forms take the count and the word.
type Mistake struct {
	Singular string `yaml:"singular"`
	Plural   string `yaml:"plural"`
}

// Templates holds the prose of a reply.
type Templates struct {
	Headers         Headers `yaml:"headers"`
	AnalysisHeading string  `yaml:"analysis_heading"`
	// Summary takes the joined mistake entries.
	Summary          string  `yaml:"summary"`
	Mistake          Mistake `yaml:"mistake"`
	Conjunction      string  `yaml:"conjunction"`
	Legend           string  `yaml:"legend"`
	BilingualHeading string  `yaml:"bilingual_heading"`
	BilingualIntro   string  `yaml:"bilingual_intro"`
	GuideHeading     string  `yaml:"guide_heading"`
	Guide            string  `yaml:"guide"`
	DemTip           string  `yaml:"dem_tip"`
	Footer           string  `yaml:"footer"`
}

const (
	police = "&#128110;"
	car    = "&#128659;"
	siren  = "&#128680;"
)

func DefaultTemplates() Templates {
	return Templates{
		Headers: Headers{
			One: "Tjenixen, /u/SprakpolisenBot här " + police + ". Jag är en båt som tränats till att kunna " +
				"skilja mellan korrekt och felaktigt bruk av `de` och `dem` i svensk text.",
			Two: "/u/SprakpolisenBot här " + police + car + ". Vi utför för närvarande slumpmässiga " +
				"språkkontroller av kommentarer på /r/sweden. Ovanstående inlägg överskred den tillåtna " +
				"gränsen för felaktiga `de/dem`-användningar. Vi rekommenderar användare som vill undvika " +
				"att fastna i framtida kontroller att ta del av analysen och guiden som bifogas nedan.",
			Many: "Stopp " + car + siren + "! Du har blivit anhållen av /u/SprakpolisenBot " + police +
				" på sannolika skäl misstänkt för brott mot det svenska skriftspråket.",
		},
		AnalysisHeading: "Analys av kommentar",
		Summary: "Efter en analys av inlägget har mitt neurala nätverk upptäckt %s. " +
			"SprakpolisenBot föreslår följande ändringar:",
		Mistake: Mistake{
			Singular: "**%d** felaktig användning av **`%s`**",
			Plural:   "**%d** felaktiga användningar av **`%s`**",
		},
		Conjunction: "samt",
		Legend: "~~ord~~: Överstruket ord indikerar felaktig användning av ~~de~~ eller ~~dem~~.  \n" +
			"**ord**: Fetstilt **de/dem** är SprakpolisenBots förslag till korrigering.  \n" +
			"**(##.##%)**: Siffror inom parentes indikerar hur pass säker modellen är på sin prediktion.",
		BilingualHeading: "Översättning",
		BilingualIntro: "En översättning till engelska visar skillnaden. " +
			"Där svenskan skiljer på `de` och `dem` skiljer engelskan på *they* och *them*:",
		GuideHeading: "Guide och tips",
		Guide: "En guide med tips och strategier för att skilja mellan `de` och `dem` finnes " +
			"på [Språkpolisens hemsida](https://lauler.github.io/sprakpolisen/guide.html). " +
			"De tillämpningsmässigt enklaste och minst tidskrävande tipsen har listats först. " +
			"Ett interaktivt demo där användare själva kan skriva in meningar och få dem " +
			"rättade finns också tillgänglig. Instruktioner för hur demot kan nås och användas " +
			"[hittas här](https://lauler.github.io/sprakpolisen/interactive.html).",
		DemTip: "Visste du att `de` är cirka 10 gånger vanligare än `dem` i svensk text? " +
			"Om du är osäker kring vilket som är rätt är det alltså statistiskt sett säkrast " +
			"att ***alltid gissa på `de`.***",
		Footer: "^([Om SprakpolisenBot](https://lauler.github.io/sprakpolisen)) | " +
			"^([Källkod](https://github.com/Lauler/sprakpolisen)) | " +
			"^([Vanliga frågor](https://lauler.github.io/sprakpolisen/faq.html)) | " +
			"^([Feedback](https://lauler.github.io/sprakpolisen/contact.html)) | " +
			"^([Interaktivt demo](https://lauler.github.io/sprakpolisen/demo.html)) ",
	}
}

// LoadTemplates reads templates from a YAML file. Keys missing from the file keep their
// default text. An empty path returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find reply templates at %v", path))
		return Templates{}, err
	}
	if err := yaml.Unmarshal(b, &templates); err != nil {
		return Templates{}, fmt.Errorf("parse reply templates %s: %w", path, err)
	}
	return templates, nil
}
