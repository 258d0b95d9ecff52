package constant

// AsciiArtLogo is the application's banner shown in the root command help.
const AsciiArtLogo = `
   _____ __                                          
  / ___// /_________  ____ _____ ___  _________ _____ 
  \__ \/ __/ ___/ _ \/ __ ` + "`" + `/ __ ` + "`" + `__ \/ ___/ __ ` + "`" + `/ __ \
 ___/ / /_/ /  /  __/ /_/ / / / / / / /__/ /_/ / /_/ /
/____/\__/_/   \___/\__,_/_/ /_/ /_/\___/\__,_/ .___/ 
                                             /_/      `
